package models

// LessonKind is the content type of a lesson
type LessonKind string

const (
	LessonVideo LessonKind = "video"
	LessonLab   LessonKind = "lab"
)

// Course is the top-level content unit, unique by slug.
// Modules and their lessons are ordered; that order defines the lesson sequence.
type Course struct {
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description"`
	Duration    string      `json:"duration,omitempty"` // "1.25 Hours"
	IsFree      bool        `json:"isFree"`
	Type        CourseType  `json:"type"`
	Category    string      `json:"category,omitempty"`
	Order       int         `json:"order"`
	Topics      []string    `json:"topics,omitempty"`
	VideoID     string      `json:"videoId,omitempty"` // intro video
	Objectives  []Objective `json:"objectives,omitempty"`
	Content     []string    `json:"content,omitempty"` // markdown paragraphs
	Modules     []*Module   `json:"modules"`
}

// Objective is a learning objective shown on the course overview
type Objective struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Module groups lessons within a course
type Module struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Lessons []*Lesson `json:"lessons"`
}

// Lesson is the smallest content unit
type Lesson struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Kind      LessonKind `json:"kind"`
	VideoID   string     `json:"videoId,omitempty"` // set when Kind is video
	Completed bool       `json:"completed"`
}

// LessonCount returns the number of lessons across all modules
func (c *Course) LessonCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// IsVideo reports whether the lesson renders a video embed
func (l *Lesson) IsVideo() bool {
	return l != nil && l.Kind == LessonVideo && l.VideoID != ""
}

// IsLab reports whether the lesson is a hands-on lab
func (l *Lesson) IsLab() bool {
	return l != nil && l.Kind == LessonLab
}

// EmbedURL returns the player URL for a video lesson, or "" for labs
func (l *Lesson) EmbedURL() string {
	if !l.IsVideo() {
		return ""
	}
	return "https://www.youtube.com/embed/" + l.VideoID + "?rel=0"
}
