package repository

import (
	"context"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

func (r *AttemptRepository) Update(ctx context.Context, id string, update bson.M) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// FindSubmittedByOwnerAndCourse returns the submitted attempts feeding the
// evidence snapshot for one learner-course pair.
func (r *AttemptRepository) FindSubmittedByOwnerAndCourse(ctx context.Context, ownerID, courseID string) ([]models.QuizAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{
		"owner_id":   ownerID,
		"course_ref": courseID,
		"status":     models.AttemptSubmitted,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.QuizAttempt
	for cur.Next(ctx) {
		var a models.QuizAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (r *AttemptRepository) FindSubmittedByOwner(ctx context.Context, ownerID string) ([]models.QuizAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{"owner_id": ownerID, "status": models.AttemptSubmitted})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.QuizAttempt
	for cur.Next(ctx) {
		var a models.QuizAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// CountByOwnerAndQuiz backs attempt-limit enforcement for bounded-retake
// instructor quizzes.
func (r *AttemptRepository) CountByOwnerAndQuiz(ctx context.Context, ownerID, quizID string) (int, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"owner_id": ownerID, "quiz_ref": quizID})
	return int(n), err
}
