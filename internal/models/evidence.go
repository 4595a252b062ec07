package models

import "time"

type EvidenceKind string

const (
	EvidenceVideoWatched        EvidenceKind = "video_watched"
	EvidenceAssignmentSubmitted EvidenceKind = "assignment_submitted"
	EvidenceAssignmentReviewed  EvidenceKind = "assignment_reviewed"
)

func (k EvidenceKind) Valid() bool {
	switch k {
	case EvidenceVideoWatched, EvidenceAssignmentSubmitted, EvidenceAssignmentReviewed:
		return true
	}
	return false
}

// EvidenceRecord is one append-only fact about a learner's interaction with
// course content: a video watched, an assignment submitted, or a review
// outcome. Records are never updated or deleted; re-evaluation reads the
// full history.
type EvidenceRecord struct {
	ID         string       `bson:"_id,omitempty" json:"id"`
	LearnerID  string       `bson:"learner_id" json:"learner_id"`
	CourseID   string       `bson:"course_id" json:"course_id"`
	ModuleID   string       `bson:"module_id" json:"module_id"`
	Kind       EvidenceKind `bson:"kind" json:"kind"`
	RefID      string       `bson:"ref_id" json:"ref_id"` // content item or assignment reference
	Grade      *float64     `bson:"grade,omitempty" json:"grade,omitempty"`
	GradePass  *bool        `bson:"grade_pass,omitempty" json:"grade_pass,omitempty"`
	RecordedAt time.Time    `bson:"recorded_at" json:"recorded_at"`
}
