package models

import "time"

type CoursePhase string

const (
	PhaseFoundation   CoursePhase = "foundation"
	PhaseIntermediate CoursePhase = "intermediate"
	PhaseAdvanced     CoursePhase = "advanced"
	PhaseCapstone     CoursePhase = "capstone"
)

type CourseStatus string

const (
	CourseDraft           CourseStatus = "draft"
	CoursePendingApproval CourseStatus = "pending_approval"
	CoursePublished       CourseStatus = "published"
	CourseArchived        CourseStatus = "archived"
	CourseRejected        CourseStatus = "rejected"
)

// RuleKind is the closed set of completion rule variants. The evaluator
// switches exhaustively on it; an unknown kind is a data error, not a
// silently-skipped rule.
type RuleKind string

const (
	RuleWatchVideos      RuleKind = "watch_videos"
	RulePassQuiz         RuleKind = "pass_quiz"
	RuleSubmitAssignment RuleKind = "submit_assignment"
)

// Rule gates module completion. Which config fields apply depends on Kind:
// pass_quiz reads QuizRef and PassScore, submit_assignment reads
// AssignmentRef and RequirePassingGrade, watch_videos needs none.
type Rule struct {
	Kind                RuleKind `bson:"kind" json:"kind"`
	QuizRef             string   `bson:"quiz_ref,omitempty" json:"quiz_ref,omitempty"`
	PassScore           int      `bson:"pass_score,omitempty" json:"pass_score,omitempty"`
	AssignmentRef       string   `bson:"assignment_ref,omitempty" json:"assignment_ref,omitempty"`
	RequirePassingGrade bool     `bson:"require_passing_grade,omitempty" json:"require_passing_grade,omitempty"`
}

type Module struct {
	ID              string   `bson:"id" json:"id"`
	Order           int      `bson:"order" json:"order"`
	Title           string   `bson:"title" json:"title"`
	Optional        bool     `bson:"optional" json:"optional"`
	ContentItemIDs  []string `bson:"content_item_ids" json:"content_item_ids"`
	CompletionRules []Rule   `bson:"completion_rules" json:"completion_rules"`
}

type Course struct {
	ID                    string       `bson:"_id,omitempty" json:"id"`
	PathSlug              string       `bson:"path_slug" json:"path_slug"`
	Title                 string       `bson:"title" json:"title"`
	Description           string       `bson:"description" json:"description"`
	Phase                 CoursePhase  `bson:"phase" json:"phase"`
	Status                CourseStatus `bson:"status" json:"status"`
	PrerequisiteCourseIDs []string     `bson:"prerequisite_course_ids" json:"prerequisite_course_ids"`
	Modules               []Module     `bson:"modules" json:"modules"`
	CreatedAt             time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `bson:"updated_at" json:"updated_at"`
}

// Visible reports whether learners can see the course at all.
func (c *Course) Visible() bool {
	return c.Status == CoursePublished
}

func (c *Course) Module(moduleID string) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i]
		}
	}
	return nil
}
