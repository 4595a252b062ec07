package repository

import (
	"context"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PathRepository struct {
	Col *mongo.Collection
}

func NewPathRepository(db *mongo.Database) *PathRepository {
	return &PathRepository{Col: db.Collection("paths")}
}

func (r *PathRepository) FindBySlug(ctx context.Context, slug string) (*models.LearningPath, error) {
	var path models.LearningPath
	err := r.Col.FindOne(ctx, bson.M{"slug": slug}).Decode(&path)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &path, nil
}

func (r *PathRepository) FindByRole(ctx context.Context, role string) ([]models.LearningPath, error) {
	cur, err := r.Col.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var paths []models.LearningPath
	for cur.Next(ctx) {
		var p models.LearningPath
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (r *PathRepository) FindAll(ctx context.Context) ([]models.LearningPath, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var paths []models.LearningPath
	for cur.Next(ctx) {
		var p models.LearningPath
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
