package models

import "time"

// CourseProgress is derived state, rewritten wholesale on every
// recomputation. It is never hand-edited and never the source of truth for
// anything except the completion transition the certificate guard watches.
type CourseProgress struct {
	ID                 string    `bson:"_id,omitempty" json:"id"`
	LearnerID          string    `bson:"learner_id" json:"learner_id"`
	PathSlug           string    `bson:"path_slug" json:"path_slug"`
	CourseID           string    `bson:"course_id" json:"course_id"`
	CompletedModuleIDs []string  `bson:"completed_module_ids" json:"completed_module_ids"`
	TotalModules       int       `bson:"total_modules" json:"total_modules"`
	CompletionPct      int       `bson:"completion_pct" json:"completion_pct"`
	CourseCompleted    bool      `bson:"course_completed" json:"course_completed"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}
