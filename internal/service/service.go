package service

import "context"

// Publisher is the slice of the event publisher the services use. A nil
// Publisher disables publishing, mirroring how main wires RabbitMQ only
// when configured.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// Recomputer triggers a progress recomputation for one learner-course
// pair. AttemptService and EvidenceService call it after every write so
// derived state never lags its evidence.
type Recomputer interface {
	RecomputeCourse(ctx context.Context, learnerID, courseID string) error
}
