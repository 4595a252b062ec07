package models

import "time"

type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "issued"
	CertificateRevoked CertificateStatus = "revoked"
)

// Certificate asserts that a learner completed a course. Its ID is
// deterministic over (learner, path, course, completion date), which makes retried
// issuance collide on _id instead of duplicating. Revocation flips status
// and keeps the record.
type Certificate struct {
	ID        string            `bson:"_id" json:"id"`
	LearnerID string            `bson:"learner_id" json:"learner_id"`
	CourseID  string            `bson:"course_id" json:"course_id"`
	PathSlug  string            `bson:"path_slug" json:"path_slug"`
	EarnedAt  time.Time         `bson:"earned_at" json:"earned_at"`
	Status    CertificateStatus `bson:"status" json:"status"`
	RevokedAt *time.Time        `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
}
