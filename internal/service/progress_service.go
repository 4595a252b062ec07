package service

import (
	"context"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/event"
	"progress-service/internal/models"
)

type ProgressStore interface {
	FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error)
	FindByLearnerAndPath(ctx context.Context, learnerID, pathSlug string) ([]models.CourseProgress, error)
	FindByLearner(ctx context.Context, learnerID string) ([]models.CourseProgress, error)
	Upsert(ctx context.Context, progress *models.CourseProgress) error
}

type EvidenceStore interface {
	FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]models.EvidenceRecord, error)
	FindByLearner(ctx context.Context, learnerID string) ([]models.EvidenceRecord, error)
}

type AttemptEvidenceStore interface {
	FindSubmittedByOwnerAndCourse(ctx context.Context, ownerID, courseID string) ([]models.QuizAttempt, error)
	FindSubmittedByOwner(ctx context.Context, ownerID string) ([]models.QuizAttempt, error)
}

// CourseQuizStore is the read slice of the quiz repository the recompute
// pipeline needs: a course's instructor quizzes carry the percentage
// thresholds their pass_quiz rules are judged against.
type CourseQuizStore interface {
	FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
}

type CertificateStore interface {
	FindIssued(ctx context.Context, learnerID, courseID string) (*models.Certificate, error)
	FindByLearner(ctx context.Context, learnerID string) ([]models.Certificate, error)
	Insert(ctx context.Context, cert *models.Certificate) (bool, error)
}

type PathStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.LearningPath, error)
}

type PublishedCourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindPublishedByPath(ctx context.Context, pathSlug string) ([]models.Course, error)
}

// ProgressService owns the recompute pipeline: evidence snapshot -> rule
// evaluation -> derived progress -> certificate guard. All writes are
// scoped to one learner, so the pipeline needs no cross-learner locking.
type ProgressService struct {
	Courses      PublishedCourseStore
	Paths        PathStore
	Progress     ProgressStore
	Evidence     EvidenceStore
	Attempts     AttemptEvidenceStore
	Quizzes      CourseQuizStore
	Certificates CertificateStore
	Config       engine.Config

	pub Publisher
	now func() time.Time
}

func NewProgressService(courses PublishedCourseStore, paths PathStore, progress ProgressStore, evidence EvidenceStore, attempts AttemptEvidenceStore, quizzes CourseQuizStore, certs CertificateStore, cfg engine.Config, pub Publisher) *ProgressService {
	return &ProgressService{
		Courses:      courses,
		Paths:        paths,
		Progress:     progress,
		Evidence:     evidence,
		Attempts:     attempts,
		Quizzes:      quizzes,
		Certificates: certs,
		Config:       cfg,
		pub:          pub,
		now:          time.Now,
	}
}

// RecomputeCourse re-derives a learner's progress for one course from the
// full evidence history and issues a certificate on a completed
// false -> true transition. Safe to call repeatedly; a crash between the
// progress write and the certificate write is healed by the deterministic
// certificate key on the next call.
func (s *ProgressService) RecomputeCourse(ctx context.Context, learnerID, courseID string) error {
	_, err := s.recompute(ctx, learnerID, courseID)
	return err
}

func (s *ProgressService) recompute(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	records, err := s.Evidence.FindByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.FindSubmittedByOwnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.Quizzes.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ev := engine.BuildEvidence(records, attempts, quizzes)

	eval, err := engine.EvaluateCourse(course, ev, s.Config.ModulePassScore)
	if err != nil {
		return nil, err
	}

	prior, err := s.Progress.FindByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	wasCompleted := prior != nil && prior.CourseCompleted

	progress := &models.CourseProgress{
		LearnerID:          learnerID,
		PathSlug:           course.PathSlug,
		CourseID:           courseID,
		CompletedModuleIDs: eval.CompletedModuleIDs,
		TotalModules:       eval.TotalModules,
		CompletionPct:      eval.CompletionPct,
		CourseCompleted:    eval.Completed,
		UpdatedAt:          s.now().UTC(),
	}
	if err := s.Progress.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	s.publishModuleTransitions(prior, progress)

	if !wasCompleted && eval.Completed {
		if err := s.issueCertificate(ctx, learnerID, course); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

func (s *ProgressService) publishModuleTransitions(prior, current *models.CourseProgress) {
	if s.pub == nil {
		return
	}
	was := make(map[string]bool)
	if prior != nil {
		for _, id := range prior.CompletedModuleIDs {
			was[id] = true
		}
	}
	for _, id := range current.CompletedModuleIDs {
		if !was[id] {
			s.pub.Publish(event.TopicModuleCompleted, map[string]interface{}{
				"learner_id": current.LearnerID,
				"course_id":  current.CourseID,
				"module_id":  id,
			})
		}
	}
	if current.CourseCompleted && (prior == nil || !prior.CourseCompleted) {
		s.pub.Publish(event.TopicCourseCompleted, map[string]interface{}{
			"learner_id":     current.LearnerID,
			"course_id":      current.CourseID,
			"path_slug":      current.PathSlug,
			"completion_pct": current.CompletionPct,
		})
	}
}

func (s *ProgressService) issueCertificate(ctx context.Context, learnerID string, course *models.Course) error {
	existing, err := s.Certificates.FindIssued(ctx, learnerID, course.ID)
	if err != nil {
		return err
	}
	cert := engine.DecideIssuance(false, true, existing, learnerID, course.ID, course.PathSlug, s.now())
	if cert == nil {
		return nil
	}
	created, err := s.Certificates.Insert(ctx, cert)
	if err != nil {
		return err
	}
	if created && s.pub != nil {
		s.pub.Publish(event.TopicCertificateIssued, map[string]interface{}{
			"certificate_id": cert.ID,
			"learner_id":     learnerID,
			"course_id":      course.ID,
			"path_slug":      course.PathSlug,
		})
	}
	return nil
}

// ProgressReport is the getProgress payload.
type ProgressReport struct {
	CourseProgress  []models.CourseProgress `json:"course_progress"`
	Readiness       engine.Readiness        `json:"readiness"`
	Certificates    []models.Certificate    `json:"certificates"`
	CurrentCourseID string                  `json:"current_course_id,omitempty"`
	LockedCourseIDs []string                `json:"locked_course_ids,omitempty"`
}

// GetProgress recomputes everything from source records on every read.
// With a path slug it covers the path's published courses (including ones
// the learner has not touched); without one it covers every course the
// learner has progress for.
func (s *ProgressService) GetProgress(ctx context.Context, learnerID, pathSlug string) (*ProgressReport, error) {
	var rows []models.CourseProgress
	var locked []string

	if pathSlug != "" {
		if _, err := s.Paths.FindBySlug(ctx, pathSlug); err != nil {
			return nil, err
		}
		courses, err := s.Courses.FindPublishedByPath(ctx, pathSlug)
		if err != nil {
			return nil, err
		}
		completed := make(map[string]bool)
		for i := range courses {
			progress, err := s.recompute(ctx, learnerID, courses[i].ID)
			if err != nil {
				return nil, err
			}
			rows = append(rows, *progress)
			completed[courses[i].ID] = progress.CourseCompleted
		}
		for i := range courses {
			if engine.CourseLocked(&courses[i], completed) {
				locked = append(locked, courses[i].ID)
			}
		}
	} else {
		existing, err := s.Progress.FindByLearner(ctx, learnerID)
		if err != nil {
			return nil, err
		}
		for i := range existing {
			progress, err := s.recompute(ctx, learnerID, existing[i].CourseID)
			if err != nil {
				if err == engine.ErrNotFound {
					// Course definition removed; keep the stored row.
					rows = append(rows, existing[i])
					continue
				}
				return nil, err
			}
			rows = append(rows, *progress)
		}
	}

	readiness, err := s.computeReadiness(ctx, learnerID, rows)
	if err != nil {
		return nil, err
	}
	certs, err := s.Certificates.FindByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []models.Certificate{}
	}
	if rows == nil {
		rows = []models.CourseProgress{}
	}

	return &ProgressReport{
		CourseProgress:  rows,
		Readiness:       readiness,
		Certificates:    certs,
		CurrentCourseID: engine.CurrentCourseID(rows),
		LockedCourseIDs: locked,
	}, nil
}

func (s *ProgressService) computeReadiness(ctx context.Context, learnerID string, rows []models.CourseProgress) (engine.Readiness, error) {
	var in engine.ReadinessInputs

	if len(rows) > 0 {
		sum := 0
		for i := range rows {
			sum += rows[i].CompletionPct
		}
		in.AvgCompletionPct = float64(sum) / float64(len(rows))
	}

	records, err := s.Evidence.FindByLearner(ctx, learnerID)
	if err != nil {
		return engine.Readiness{}, err
	}
	reviewed, passed := 0, 0
	for i := range records {
		if records[i].Kind == models.EvidenceAssignmentReviewed {
			reviewed++
			if records[i].GradePass != nil && *records[i].GradePass {
				passed++
			}
		}
	}
	if reviewed > 0 {
		in.HasAssignments = true
		in.AssignmentPassRate = float64(passed) / float64(reviewed)
	}

	attempts, err := s.Attempts.FindSubmittedByOwner(ctx, learnerID)
	if err != nil {
		return engine.Readiness{}, err
	}
	if len(attempts) > 0 {
		in.HasQuizzes = true
		quizPassed := 0
		for i := range attempts {
			if engine.Passed(&attempts[i], s.Config.ModulePassScore) {
				quizPassed++
			}
		}
		in.QuizPassRate = float64(quizPassed) / float64(len(attempts))
	}

	return engine.ComputeReadiness(in, s.Config), nil
}
