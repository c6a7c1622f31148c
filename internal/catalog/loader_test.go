package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terra-clan/course-portal/internal/models"
)

func TestLoadContentDir(t *testing.T) {
	// Use the shipped content directory
	contentDir := filepath.Join("..", "..", "content")

	if _, err := os.Stat(contentDir); os.IsNotExist(err) {
		t.Skip("content directory not found, skipping")
	}

	loader := NewLoader()
	report, err := loader.LoadFromDir(contentDir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if len(report.Failed) > 0 {
		t.Errorf("unexpected failures: %v", report.Failed)
	}

	course := loader.Get("relational-to-document-model")
	if course == nil {
		t.Fatal("relational-to-document-model not found")
	}
	if course.Title != "Relational to Document Model" {
		t.Errorf("unexpected title: %s", course.Title)
	}
	if len(course.Modules) != 4 {
		t.Errorf("expected 4 modules, got %d", len(course.Modules))
	}
	if course.LessonCount() != 11 {
		t.Errorf("expected 11 lessons, got %d", course.LessonCount())
	}

	first := course.Modules[0].Lessons[0]
	if first.ID != "video-relational-document" || first.Kind != models.LessonVideo || first.VideoID != "GtD93tVZDX4" {
		t.Errorf("unexpected first lesson: %+v", first)
	}

	lab := course.Modules[0].Lessons[1]
	if !lab.IsLab() || lab.EmbedURL() != "" {
		t.Errorf("expected lab lesson without embed, got %+v", lab)
	}

	// ordered by catalog order
	list := loader.List()
	if len(list) < 2 || list[0].Slug != "relational-to-document-model" || list[1].Slug != "schema-patterns" {
		t.Errorf("unexpected order: %v", slugs(list))
	}

	if err := loader.Ping(context.Background()); err != nil {
		t.Errorf("expected ping ok, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing title",
			yaml:    "modules: []",
			wantErr: "Title",
		},
		{
			name: "video without video id",
			yaml: `
title: T
modules:
  - id: m
    title: M
    lessons:
      - id: l
        title: L
        kind: video
`,
			wantErr: "VideoID",
		},
		{
			name: "unknown lesson kind",
			yaml: `
title: T
modules:
  - id: m
    title: M
    lessons:
      - id: l
        title: L
        kind: quiz
`,
			wantErr: "Kind",
		},
		{
			name: "lesson id with comma",
			yaml: `
title: T
modules:
  - id: m
    title: M
    lessons:
      - {id: "part,two", title: L, kind: lab}
`,
			wantErr: "excludesall",
		},
		{
			name: "module id with slash",
			yaml: `
title: T
modules:
  - id: a/b
    title: M
`,
			wantErr: "excludesall",
		},
		{
			name:    "unknown course type",
			yaml:    "title: T\ntype: webinar",
			wantErr: "Type",
		},
		{
			name:    "broken yaml",
			yaml:    "title: [",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse("x", []byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseDefaultsAndWarnings(t *testing.T) {
	course, warnings, err := Parse("dup", []byte(`
title: Duplicates
modules:
  - id: a
    title: A
    lessons:
      - {id: one, title: One, kind: lab}
  - id: b
    title: B
    lessons:
      - {id: one, title: Again, kind: lab}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if course.Slug != "dup" {
		t.Errorf("slug should come from caller, got %q", course.Slug)
	}
	if course.Type != models.CourseTypeCourse {
		t.Errorf("expected default type course, got %q", course.Type)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `"one"`) {
		t.Errorf("expected one duplicate warning, got %v", warnings)
	}
}

func TestLoadFromDirSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeCourse(t, dir, "good", "title: Good\norder: 2\nmodules: []\n")
	writeCourse(t, dir, "bad", "modules: []\n")
	writeCourse(t, dir, "early", "title: Early\norder: 1\n")
	if err := os.Mkdir(filepath.Join(dir, "not-a-course"), 0o755); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	report, err := loader.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	if len(report.Loaded) != 2 {
		t.Errorf("expected 2 loaded, got %v", report.Loaded)
	}
	if _, ok := report.Failed["bad"]; !ok {
		t.Errorf("expected bad course to fail, got %v", report.Failed)
	}
	if got := slugs(loader.List()); strings.Join(got, ",") != "early,good" {
		t.Errorf("unexpected order: %v", got)
	}

	// reload replaces the whole set
	if err := os.RemoveAll(filepath.Join(dir, "good")); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if loader.Get("good") != nil {
		t.Error("removed course still present after reload")
	}
}

func TestLoadFromMissingDir(t *testing.T) {
	loader := NewLoader()
	if _, err := loader.LoadFromDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
	if _, err := loader.Reload(); err == nil {
		t.Fatal("expected reload without dir to fail")
	}
	if err := loader.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail with no courses")
	}
}

func TestSummaries(t *testing.T) {
	courses := []*models.Course{
		{Slug: "a", Title: "A", Type: models.CourseTypeSkill, Category: "popular", IsFree: true},
		{Slug: "b", Title: "B", Type: models.CourseTypeTraining, Category: "instructor"},
		{Slug: "c", Title: "C", Type: models.CourseTypeSkill, Category: "labs", Description: "desc"},
	}

	if got := Summaries(courses, "popular", 0); len(got) != 3 {
		t.Errorf("popular should list everything, got %d", len(got))
	}
	if got := Summaries(courses, "skills", 0); len(got) != 2 {
		t.Errorf("skills should match type skill, got %d", len(got))
	}
	if got := Summaries(courses, "instructor", 0); len(got) != 1 || got[0].TypeLabel != "INSTRUCTOR-LED TRAINING" || got[0].PriceLabel != "Paid" {
		t.Errorf("unexpected instructor result: %+v", got)
	}
	if got := Summaries(courses, "labs", 0); len(got) != 1 || got[0].Summary != "desc" {
		t.Errorf("labs should match category field and fall back to description, got %+v", got)
	}
	if got := Summaries(courses, "", 2); len(got) != 2 {
		t.Errorf("limit not applied, got %d", len(got))
	}
}

func writeCourse(t *testing.T, dir, slug, body string) {
	t.Helper()
	courseDir := filepath.Join(dir, slug)
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(courseDir, CourseFileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func slugs(courses []*models.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Slug)
	}
	return out
}
