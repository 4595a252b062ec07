package repository

import (
	"context"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type CertificateRepository struct {
	Col *mongo.Collection
}

func NewCertificateRepository(db *mongo.Database) *CertificateRepository {
	return &CertificateRepository{Col: db.Collection("certificates")}
}

func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&cert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// FindIssued returns the Issued certificate for a learner-course pair, or
// nil, nil when none exists. Revoked certificates do not count.
func (r *CertificateRepository) FindIssued(ctx context.Context, learnerID, courseID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.Col.FindOne(ctx, bson.M{
		"learner_id": learnerID,
		"course_id":  courseID,
		"status":     models.CertificateIssued,
	}).Decode(&cert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByLearner(ctx context.Context, learnerID string) ([]models.Certificate, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var certs []models.Certificate
	for cur.Next(ctx) {
		var c models.Certificate
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, nil
}

// Insert persists an issuance. The deterministic _id makes a retried write
// after a crash collide instead of duplicating; the collision is reported
// as already-issued, not as an error.
func (r *CertificateRepository) Insert(ctx context.Context, cert *models.Certificate) (created bool, err error) {
	_, err = r.Col.InsertOne(ctx, cert)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke flips Issued -> Revoked and keeps the record. Revoking an already
// revoked certificate is a no-op reported as not found.
func (r *CertificateRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.CertificateIssued},
		bson.M{"$set": bson.M{"status": models.CertificateRevoked, "revoked_at": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return engine.ErrNotFound
	}
	return nil
}
