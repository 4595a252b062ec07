package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("progress")}
}

// FindByLearnerAndCourse returns nil, nil when no progress exists yet; the
// first interaction creates the record.
func (r *ProgressRepository) FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := r.Col.FindOne(ctx, bson.M{"learner_id": learnerID, "course_id": courseID}).Decode(&progress)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByLearnerAndPath(ctx context.Context, learnerID, pathSlug string) ([]models.CourseProgress, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID, "path_slug": pathSlug})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.CourseProgress
	for cur.Next(ctx) {
		var p models.CourseProgress
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

func (r *ProgressRepository) FindByLearner(ctx context.Context, learnerID string) ([]models.CourseProgress, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.CourseProgress
	for cur.Next(ctx) {
		var p models.CourseProgress
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// Upsert rewrites the derived record wholesale, keyed by learner+course.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *models.CourseProgress) error {
	filter := bson.M{"learner_id": progress.LearnerID, "course_id": progress.CourseID}
	update := bson.M{"$set": bson.M{
		"learner_id":           progress.LearnerID,
		"path_slug":            progress.PathSlug,
		"course_id":            progress.CourseID,
		"completed_module_ids": progress.CompletedModuleIDs,
		"total_modules":        progress.TotalModules,
		"completion_pct":       progress.CompletionPct,
		"course_completed":     progress.CourseCompleted,
		"updated_at":           progress.UpdatedAt,
	}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
