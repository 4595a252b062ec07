package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/event"
	"progress-service/internal/generation"
	"progress-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type AttemptStore interface {
	FindByID(ctx context.Context, id string) (*models.QuizAttempt, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	Update(ctx context.Context, id string, update bson.M) error
	CountByOwnerAndQuiz(ctx context.Context, ownerID, quizID string) (int, error)
}

type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
}

type QuestionStore interface {
	FindActiveByQuiz(ctx context.Context, quizID string) ([]models.Question, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type AttemptService struct {
	Attempts  AttemptStore
	Quizzes   QuizStore
	Questions QuestionStore
	Courses   CourseStore
	Generator generation.Generator
	Recompute Recomputer
	Config    engine.Config

	pub Publisher
	now func() time.Time
}

func NewAttemptService(attempts AttemptStore, quizzes QuizStore, questions QuestionStore, courses CourseStore, gen generation.Generator, recompute Recomputer, cfg engine.Config, pub Publisher) *AttemptService {
	return &AttemptService{
		Attempts:  attempts,
		Quizzes:   quizzes,
		Questions: questions,
		Courses:   courses,
		Generator: gen,
		Recompute: recompute,
		Config:    cfg,
		pub:       pub,
		now:       time.Now,
	}
}

type GenerateRequest struct {
	CourseID   string `json:"course_id" binding:"required"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	QuizID     string `json:"quiz_id"` // set for instructor-authored gating quizzes
}

// Generate creates a new attempt with an immutable question snapshot.
// Instructor quizzes draw from their question bank and enforce the attempt
// limit; practice attempts call the external generator with a timeout.
// Nothing is persisted unless a full, well-formed snapshot exists.
func (s *AttemptService) Generate(ctx context.Context, ownerID string, req GenerateRequest) (*models.QuizAttempt, error) {
	course, err := s.Courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.Visible() {
		return nil, engine.ErrNotFound
	}

	var questions []models.AttemptQuestion
	if req.QuizID != "" {
		questions, err = s.snapshotFromBank(ctx, ownerID, req.QuizID)
	} else {
		questions, err = s.generateFresh(ctx, req.Topic, req.Difficulty)
	}
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		CourseRef:  req.CourseID,
		QuizRef:    req.QuizID,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  questions,
		Answers:    engine.EmptyAnswers(len(questions)),
		Status:     models.AttemptGenerated,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if s.pub != nil {
		s.pub.Publish(event.TopicQuizGenerated, map[string]interface{}{
			"attempt_id": attempt.ID,
			"owner_id":   ownerID,
			"course_id":  req.CourseID,
			"quiz_id":    req.QuizID,
		})
	}
	return attempt, nil
}

func (s *AttemptService) snapshotFromBank(ctx context.Context, ownerID, quizID string) ([]models.AttemptQuestion, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.AttemptLimit > 0 {
		used, err := s.Attempts.CountByOwnerAndQuiz(ctx, ownerID, quizID)
		if err != nil {
			return nil, err
		}
		if used >= quiz.AttemptLimit {
			return nil, &engine.AttemptLimitError{QuizID: quizID, Limit: quiz.AttemptLimit}
		}
	}

	bank, err := s.Questions.FindActiveByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	count := s.Config.QuestionCount
	if len(bank) < count {
		return nil, &engine.GenerationError{
			Reason: fmt.Sprintf("quiz %s has %d usable questions, need %d", quizID, len(bank), count),
		}
	}
	for i := range bank {
		if len(bank[i].Options) != s.Config.OptionCount {
			return nil, &engine.GenerationError{
				Reason: fmt.Sprintf("question %s has %d options, need %d", bank[i].ID, len(bank[i].Options), s.Config.OptionCount),
			}
		}
	}

	rand.Shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })
	questions := make([]models.AttemptQuestion, count)
	for i := 0; i < count; i++ {
		questions[i] = bank[i].Snapshot()
	}
	return questions, nil
}

func (s *AttemptService) generateFresh(ctx context.Context, topic, difficulty string) ([]models.AttemptQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Config.GenerationTimeout)
	defer cancel()
	return s.Generator.Generate(ctx, topic, difficulty, s.Config.QuestionCount, s.Config.OptionCount)
}

// SaveAnswer records a provisional answer on an open attempt.
func (s *AttemptService) SaveAnswer(ctx context.Context, ownerID, attemptID string, questionIndex, optionIndex int) error {
	attempt, err := s.ownedAttempt(ctx, ownerID, attemptID)
	if err != nil {
		return err
	}
	if err := engine.SaveAnswer(attempt, questionIndex, optionIndex, s.Config.OptionCount); err != nil {
		return err
	}
	return s.Attempts.Update(ctx, attemptID, bson.M{
		"answers": attempt.Answers,
		"status":  attempt.Status,
	})
}

// Submit scores the attempt against its snapshot, persists the terminal
// state and triggers a progress recomputation for the course.
func (s *AttemptService) Submit(ctx context.Context, ownerID, attemptID string, answers []int) (*engine.SubmitResult, error) {
	attempt, err := s.ownedAttempt(ctx, ownerID, attemptID)
	if err != nil {
		return nil, err
	}

	result, err := engine.Submit(attempt, answers, s.Config.OptionCount, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.Attempts.Update(ctx, attemptID, bson.M{
		"answers":      attempt.Answers,
		"status":       attempt.Status,
		"score":        attempt.Score,
		"submitted_at": attempt.SubmittedAt,
	}); err != nil {
		return nil, err
	}

	if s.pub != nil {
		s.pub.Publish(event.TopicQuizSubmitted, map[string]interface{}{
			"attempt_id": attempt.ID,
			"owner_id":   ownerID,
			"course_id":  attempt.CourseRef,
			"quiz_id":    attempt.QuizRef,
			"score":      attempt.Score,
			"total":      len(attempt.Questions),
		})
	}

	// Recomputation is idempotent; a failure here is retried on the next
	// read rather than failing the submission the learner already made.
	if s.Recompute != nil {
		if err := s.Recompute.RecomputeCourse(ctx, ownerID, attempt.CourseRef); err != nil {
			log.Printf("progress recompute after submit failed: %v", err)
		}
	}
	return result, nil
}

// Get returns the learner-facing view; correct indices stay hidden until
// the attempt is submitted.
func (s *AttemptService) Get(ctx context.Context, ownerID, attemptID string) (interface{}, error) {
	attempt, err := s.ownedAttempt(ctx, ownerID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == models.AttemptSubmitted {
		return attempt, nil
	}
	return attempt.LearnerView(), nil
}

func (s *AttemptService) ownedAttempt(ctx context.Context, ownerID, attemptID string) (*models.QuizAttempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.OwnerID != ownerID {
		// Do not leak other learners' attempts.
		return nil, engine.ErrNotFound
	}
	return attempt, nil
}
