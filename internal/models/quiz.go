package models

import "time"

// Quiz is an instructor-authored, module-gating quiz. AI practice attempts
// have no Quiz document; their pass threshold comes from the module rule.
type Quiz struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	CourseRef    string    `bson:"course_ref" json:"course_ref"`
	Title        string    `bson:"title" json:"title"`
	Description  string    `bson:"description" json:"description"`
	PassingScore float64   `bson:"passing_score" json:"passing_score"` // percentage, 0..100
	AttemptLimit int       `bson:"attempt_limit" json:"attempt_limit"` // 0 = unlimited
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
