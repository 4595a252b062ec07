package service

import (
	"context"
	"time"

	"progress-service/internal/event"
	"progress-service/internal/models"
)

type CertificateAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	FindByLearner(ctx context.Context, learnerID string) ([]models.Certificate, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

type CertificateService struct {
	Certificates CertificateAdminStore

	pub Publisher
	now func() time.Time
}

func NewCertificateService(certs CertificateAdminStore, pub Publisher) *CertificateService {
	return &CertificateService{Certificates: certs, pub: pub, now: time.Now}
}

func (s *CertificateService) List(ctx context.Context, learnerID string) ([]models.Certificate, error) {
	certs, err := s.Certificates.FindByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []models.Certificate{}
	}
	return certs, nil
}

// Revoke is the administrative Issued -> Revoked transition. It keeps the
// record and never triggers re-issuance; re-earning is a separate policy
// decision outside this service.
func (s *CertificateService) Revoke(ctx context.Context, certID string) (*models.Certificate, error) {
	if err := s.Certificates.Revoke(ctx, certID, s.now().UTC()); err != nil {
		return nil, err
	}
	cert, err := s.Certificates.FindByID(ctx, certID)
	if err != nil {
		return nil, err
	}
	if s.pub != nil {
		s.pub.Publish(event.TopicCertificateRevoked, map[string]interface{}{
			"certificate_id": cert.ID,
			"learner_id":     cert.LearnerID,
			"course_id":      cert.CourseID,
		})
	}
	return cert, nil
}
