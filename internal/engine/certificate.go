package engine

import (
	"time"

	"progress-service/internal/models"

	"github.com/google/uuid"
)

// Namespace for deterministic certificate IDs. Fixed so repeated issuance
// for the same (learner, path, course, date) always derives the same _id
// and retried writes collide instead of duplicating.
var certificateNamespace = uuid.MustParse("8c3f1b6a-52de-4f9c-9c6e-2f45a1d0b7e3")

// CertificateID derives the deterministic certificate identifier from the
// learner, the path slug, the course and the completion date (day
// granularity, UTC). The learner component keeps different learners'
// certificates distinct; only the same learner's retried issuance collides.
func CertificateID(learnerID, pathSlug, courseID string, earnedAt time.Time) string {
	day := earnedAt.UTC().Format("2006-01-02")
	return uuid.NewSHA1(certificateNamespace, []byte(learnerID+"/"+pathSlug+"/"+courseID+"/"+day)).String()
}

// DecideIssuance is the certificate guard. It returns the certificate to
// issue only on a completed false -> true transition with no Issued
// certificate already on record; every other combination returns nil.
// A revoked certificate never re-triggers issuance.
func DecideIssuance(wasCompleted, nowCompleted bool, existing *models.Certificate, learnerID, courseID, pathSlug string, now time.Time) *models.Certificate {
	if wasCompleted || !nowCompleted {
		return nil
	}
	if existing != nil {
		return nil
	}
	earnedAt := now.UTC()
	return &models.Certificate{
		ID:        CertificateID(learnerID, pathSlug, courseID, earnedAt),
		LearnerID: learnerID,
		CourseID:  courseID,
		PathSlug:  pathSlug,
		EarnedAt:  earnedAt,
		Status:    models.CertificateIssued,
	}
}
