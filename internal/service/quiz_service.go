package service

import (
	"context"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type QuizAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, id string, update bson.M) error
}

type QuestionAdminStore interface {
	FindActiveByQuiz(ctx context.Context, quizID string) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
}

// QuizService is the authoring surface for instructor quizzes and their
// question banks. Attempt snapshots copy bank questions at generation
// time, so edits here never disturb recorded scores.
type QuizService struct {
	Quizzes   QuizAdminStore
	Questions QuestionAdminStore

	now func() time.Time
}

func NewQuizService(quizzes QuizAdminStore, questions QuestionAdminStore) *QuizService {
	return &QuizService{Quizzes: quizzes, Questions: questions, now: time.Now}
}

func (s *QuizService) Get(ctx context.Context, id string) (*models.Quiz, error) {
	return s.Quizzes.FindByID(ctx, id)
}

func (s *QuizService) ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	return s.Quizzes.FindByCourse(ctx, courseID)
}

func (s *QuizService) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.PassingScore < 0 || quiz.PassingScore > 100 {
		return &engine.ValidationError{Field: "passing_score", Reason: "must be within 0..100"}
	}
	if quiz.AttemptLimit < 0 {
		return &engine.ValidationError{Field: "attempt_limit", Reason: "must be non-negative"}
	}
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	now := s.now().UTC()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	return s.Quizzes.Create(ctx, quiz)
}

func (s *QuizService) Update(ctx context.Context, id string, update bson.M) error {
	update["updated_at"] = s.now().UTC()
	return s.Quizzes.Update(ctx, id, update)
}

func (s *QuizService) ListQuestions(ctx context.Context, quizID string) ([]models.Question, error) {
	return s.Questions.FindActiveByQuiz(ctx, quizID)
}

func (s *QuizService) CreateQuestion(ctx context.Context, q *models.Question, optionCount int) error {
	if len(q.Options) != optionCount {
		return &engine.ValidationError{Field: "options", Reason: "wrong option count"}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= optionCount {
		return &engine.ValidationError{Field: "correct_index", Reason: "out of range"}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = "active"
	}
	return s.Questions.Create(ctx, q)
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id string, update bson.M) error {
	return s.Questions.Update(ctx, id, update)
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Questions.Delete(ctx, id)
}
