package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type EvidenceRepository struct {
	Col *mongo.Collection
}

func NewEvidenceRepository(db *mongo.Database) *EvidenceRepository {
	return &EvidenceRepository{Col: db.Collection("evidence")}
}

// Create appends one record. Evidence is append-only; there is no update
// or delete on this collection.
func (r *EvidenceRepository) Create(ctx context.Context, rec *models.EvidenceRecord) error {
	_, err := r.Col.InsertOne(ctx, rec)
	return err
}

func (r *EvidenceRepository) FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]models.EvidenceRecord, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID, "course_id": courseID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []models.EvidenceRecord
	for cur.Next(ctx) {
		var rec models.EvidenceRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *EvidenceRepository) FindByLearner(ctx context.Context, learnerID string) ([]models.EvidenceRecord, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []models.EvidenceRecord
	for cur.Next(ctx) {
		var rec models.EvidenceRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
