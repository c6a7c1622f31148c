package models

// CourseType is the kind of offering shown on a course card
type CourseType string

const (
	CourseTypeSkill    CourseType = "skill"
	CourseTypeTraining CourseType = "training"
	CourseTypeCourse   CourseType = "course"
)

// Label returns the badge text used on course cards
func (t CourseType) Label() string {
	switch t {
	case CourseTypeSkill:
		return "SKILL"
	case CourseTypeTraining:
		return "INSTRUCTOR-LED TRAINING"
	default:
		return "COURSE"
	}
}

// Category represents a catalog filter chip (e.g., popular, skills)
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Catalog categories in display order
var Categories = []Category{
	{ID: "popular", Label: "Popular Training"},
	{ID: "skills", Label: "Skills"},
	{ID: "self-paced", Label: "Self-paced Learning"},
	{ID: "instructor", Label: "Instructor-led Training"},
	{ID: "labs", Label: "Labs"},
}

// DefaultCategory is the category selected when none is requested
const DefaultCategory = "popular"

// CourseSummary represents a course card in the catalog listing
type CourseSummary struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Type        CourseType `json:"type"`
	TypeLabel   string     `json:"typeLabel"`
	IsFree      bool       `json:"isFree"`
	PriceLabel  string     `json:"priceLabel"`
	Category    string     `json:"category"`
	LessonCount int        `json:"lessonCount"`
	Order       int        `json:"order"`
}

// Summarize builds the catalog card for a course
func Summarize(c *Course) *CourseSummary {
	summary := c.Summary
	if summary == "" {
		summary = c.Description
	}

	price := "Paid"
	if c.IsFree {
		price = "Free"
	}

	return &CourseSummary{
		Slug:        c.Slug,
		Title:       c.Title,
		Summary:     summary,
		Type:        c.Type,
		TypeLabel:   c.Type.Label(),
		IsFree:      c.IsFree,
		PriceLabel:  price,
		Category:    c.Category,
		LessonCount: c.LessonCount(),
		Order:       c.Order,
	}
}

// MatchesCategory reports whether a course card belongs under a category chip.
// "popular" and "" match everything; "skills" and "instructor" match by course type;
// any other category matches the course's own category field.
func (s *CourseSummary) MatchesCategory(category string) bool {
	switch category {
	case "", "popular":
		return true
	case "skills":
		return s.Type == CourseTypeSkill
	case "instructor":
		return s.Type == CourseTypeTraining
	default:
		return s.Category == category
	}
}
