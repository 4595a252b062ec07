package service

import (
	"context"
	"log"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/event"
	"progress-service/internal/models"

	"github.com/google/uuid"
)

type EvidenceWriter interface {
	Create(ctx context.Context, rec *models.EvidenceRecord) error
}

type EvidenceService struct {
	Evidence  EvidenceWriter
	Courses   CourseStore
	Recompute Recomputer

	pub Publisher
	now func() time.Time
}

func NewEvidenceService(evidence EvidenceWriter, courses CourseStore, recompute Recomputer, pub Publisher) *EvidenceService {
	return &EvidenceService{
		Evidence:  evidence,
		Courses:   courses,
		Recompute: recompute,
		pub:       pub,
		now:       time.Now,
	}
}

type RecordEvidenceRequest struct {
	CourseID  string              `json:"course_id" binding:"required"`
	ModuleID  string              `json:"module_id" binding:"required"`
	Kind      models.EvidenceKind `json:"kind" binding:"required"`
	RefID     string              `json:"ref_id" binding:"required"`
	Grade     *float64            `json:"grade,omitempty"`
	GradePass *bool               `json:"grade_pass,omitempty"`
}

// Record appends one evidence fact and recomputes the affected course.
// Records are append-only; correcting a mistake means appending a newer
// fact, not editing history.
func (s *EvidenceService) Record(ctx context.Context, learnerID string, req RecordEvidenceRequest) error {
	if !req.Kind.Valid() {
		return &engine.ValidationError{Field: "kind", Reason: "unknown evidence kind"}
	}

	course, err := s.Courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return err
	}
	if course.Module(req.ModuleID) == nil {
		return engine.ErrNotFound
	}

	rec := &models.EvidenceRecord{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		CourseID:   req.CourseID,
		ModuleID:   req.ModuleID,
		Kind:       req.Kind,
		RefID:      req.RefID,
		Grade:      req.Grade,
		GradePass:  req.GradePass,
		RecordedAt: s.now().UTC(),
	}
	if err := s.Evidence.Create(ctx, rec); err != nil {
		return err
	}

	if s.pub != nil {
		s.pub.Publish(event.TopicEvidenceRecorded, map[string]interface{}{
			"learner_id": learnerID,
			"course_id":  req.CourseID,
			"module_id":  req.ModuleID,
			"kind":       req.Kind,
			"ref_id":     req.RefID,
		})
	}

	if s.Recompute != nil {
		if err := s.Recompute.RecomputeCourse(ctx, learnerID, req.CourseID); err != nil {
			log.Printf("progress recompute after evidence failed: %v", err)
		}
	}
	return nil
}
