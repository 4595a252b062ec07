package engine

import (
	"testing"
	"time"

	"progress-service/internal/models"
)

func TestCertificateID_Deterministic(t *testing.T) {
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	a := CertificateID("learner-1", "security-analyst", "course-1", morning)
	b := CertificateID("learner-1", "security-analyst", "course-1", evening)
	if a != b {
		t.Errorf("same day should derive the same id: %s vs %s", a, b)
	}
	if c := CertificateID("learner-1", "security-analyst", "course-1", nextDay); c == a {
		t.Error("different day should derive a different id")
	}
	if c := CertificateID("learner-1", "security-analyst", "course-2", morning); c == a {
		t.Error("different course should derive a different id")
	}
	if c := CertificateID("learner-1", "data-engineer", "course-1", morning); c == a {
		t.Error("different path should derive a different id")
	}
	if c := CertificateID("learner-2", "security-analyst", "course-1", morning); c == a {
		t.Error("different learner should derive a different id")
	}
}

func TestDecideIssuance(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued := &models.Certificate{ID: "existing", Status: models.CertificateIssued}

	tests := []struct {
		name      string
		was, is   bool
		existing  *models.Certificate
		wantIssue bool
	}{
		{"false to true issues", false, true, nil, true},
		{"already completed stays silent", true, true, nil, false},
		{"regression stays silent", true, false, nil, false},
		{"still incomplete stays silent", false, false, nil, false},
		{"existing certificate blocks reissue", false, true, issued, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := DecideIssuance(tt.was, tt.is, tt.existing, "learner-1", "course-1", "security-analyst", now)
			if (cert != nil) != tt.wantIssue {
				t.Fatalf("issued = %v, want %v", cert != nil, tt.wantIssue)
			}
			if cert == nil {
				return
			}
			if cert.ID != CertificateID("learner-1", "security-analyst", "course-1", now) {
				t.Errorf("id = %s, not the deterministic derivation", cert.ID)
			}
			if cert.Status != models.CertificateIssued {
				t.Errorf("status = %s, want issued", cert.Status)
			}
			if cert.LearnerID != "learner-1" || cert.CourseID != "course-1" || cert.PathSlug != "security-analyst" {
				t.Errorf("wrong subject fields: %+v", cert)
			}
		})
	}
}

// Two racing recomputations both decide to issue; the deterministic ID makes
// the second insert a duplicate-key no-op instead of a second certificate.
func TestDecideIssuance_RacersDeriveSameID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := DecideIssuance(false, true, nil, "learner-1", "course-1", "security-analyst", now)
	second := DecideIssuance(false, true, nil, "learner-1", "course-1", "security-analyst", now.Add(3*time.Hour))
	if first == nil || second == nil {
		t.Fatal("both racers should decide to issue")
	}
	if first.ID != second.ID {
		t.Errorf("racing issuances derived different ids: %s vs %s", first.ID, second.ID)
	}
}

// Two different learners finishing the same course on the same day must not
// share an ID, or the second learner's insert would collide and drop their
// certificate.
func TestDecideIssuance_DistinctLearnersDistinctIDs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := DecideIssuance(false, true, nil, "learner-1", "course-1", "security-analyst", now)
	second := DecideIssuance(false, true, nil, "learner-2", "course-1", "security-analyst", now)
	if first == nil || second == nil {
		t.Fatal("both learners should be issued")
	}
	if first.ID == second.ID {
		t.Errorf("learners share certificate id %s", first.ID)
	}
}
