package service

import (
	"context"
	"sync"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// In-memory fakes for the store interfaces. They mimic the repository
// contracts, including the nil-without-error miss on progress and
// certificate lookups and the duplicate-key behavior on certificate
// inserts.

type fakeCourseStore struct {
	courses map[string]*models.Course
}

func newFakeCourseStore(courses ...*models.Course) *fakeCourseStore {
	m := make(map[string]*models.Course)
	for _, c := range courses {
		m[c.ID] = c
	}
	return &fakeCourseStore{courses: m}
}

func (f *fakeCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourseStore) FindPublishedByPath(ctx context.Context, pathSlug string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.PathSlug == pathSlug && c.Status == models.CoursePublished {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakePathStore struct {
	paths map[string]*models.LearningPath
}

func (f *fakePathStore) FindBySlug(ctx context.Context, slug string) (*models.LearningPath, error) {
	p, ok := f.paths[slug]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return p, nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*models.QuizAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[string]*models.QuizAttempt)}
}

func (f *fakeAttemptStore) FindByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *attempt
	f.attempts[attempt.ID] = &clone
	return nil
}

func (f *fakeAttemptStore) Update(ctx context.Context, id string, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return engine.ErrNotFound
	}
	if v, ok := update["answers"]; ok {
		a.Answers = v.([]int)
	}
	if v, ok := update["status"]; ok {
		a.Status = v.(models.AttemptStatus)
	}
	if v, ok := update["score"]; ok {
		a.Score = v.(int)
	}
	if v, ok := update["submitted_at"]; ok {
		a.SubmittedAt = v.(*time.Time)
	}
	return nil
}

func (f *fakeAttemptStore) CountByOwnerAndQuiz(ctx context.Context, ownerID, quizID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.attempts {
		if a.OwnerID == ownerID && a.QuizRef == quizID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttemptStore) FindSubmittedByOwnerAndCourse(ctx context.Context, ownerID, courseID string) ([]models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.OwnerID == ownerID && a.CourseRef == courseID && a.Status == models.AttemptSubmitted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) FindSubmittedByOwner(ctx context.Context, ownerID string) ([]models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.OwnerID == ownerID && a.Status == models.AttemptSubmitted {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeQuizStore struct {
	quizzes map[string]*models.Quiz
}

func (f *fakeQuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return q, nil
}

func (f *fakeQuizStore) FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		if q.CourseRef == courseID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	byQuiz map[string][]models.Question
}

func (f *fakeQuestionStore) FindActiveByQuiz(ctx context.Context, quizID string) ([]models.Question, error) {
	return append([]models.Question(nil), f.byQuiz[quizID]...), nil
}

type fakeEvidenceStore struct {
	records []models.EvidenceRecord
}

func (f *fakeEvidenceStore) Create(ctx context.Context, rec *models.EvidenceRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeEvidenceStore) FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]models.EvidenceRecord, error) {
	var out []models.EvidenceRecord
	for _, r := range f.records {
		if r.LearnerID == learnerID && r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEvidenceStore) FindByLearner(ctx context.Context, learnerID string) ([]models.EvidenceRecord, error) {
	var out []models.EvidenceRecord
	for _, r := range f.records {
		if r.LearnerID == learnerID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	rows map[string]*models.CourseProgress // learnerID + "/" + courseID
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[string]*models.CourseProgress)}
}

func (f *fakeProgressStore) key(learnerID, courseID string) string {
	return learnerID + "/" + courseID
}

func (f *fakeProgressStore) FindByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	p, ok := f.rows[f.key(learnerID, courseID)]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProgressStore) FindByLearnerAndPath(ctx context.Context, learnerID, pathSlug string) ([]models.CourseProgress, error) {
	var out []models.CourseProgress
	for _, p := range f.rows {
		if p.LearnerID == learnerID && p.PathSlug == pathSlug {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProgressStore) FindByLearner(ctx context.Context, learnerID string) ([]models.CourseProgress, error) {
	var out []models.CourseProgress
	for _, p := range f.rows {
		if p.LearnerID == learnerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProgressStore) Upsert(ctx context.Context, progress *models.CourseProgress) error {
	clone := *progress
	f.rows[f.key(progress.LearnerID, progress.CourseID)] = &clone
	return nil
}

type fakeCertificateStore struct {
	certs map[string]*models.Certificate
}

func newFakeCertificateStore() *fakeCertificateStore {
	return &fakeCertificateStore{certs: make(map[string]*models.Certificate)}
}

func (f *fakeCertificateStore) FindIssued(ctx context.Context, learnerID, courseID string) (*models.Certificate, error) {
	for _, c := range f.certs {
		if c.LearnerID == learnerID && c.CourseID == courseID && c.Status == models.CertificateIssued {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeCertificateStore) FindByLearner(ctx context.Context, learnerID string) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, c := range f.certs {
		if c.LearnerID == learnerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertificateStore) Insert(ctx context.Context, cert *models.Certificate) (bool, error) {
	if _, exists := f.certs[cert.ID]; exists {
		return false, nil
	}
	clone := *cert
	f.certs[cert.ID] = &clone
	return true, nil
}

type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	Topic   string
	Payload interface{}
}

func (f *fakePublisher) Publish(eventType string, payload interface{}) error {
	f.events = append(f.events, publishedEvent{Topic: eventType, Payload: payload})
	return nil
}

func (f *fakePublisher) count(topic string) int {
	n := 0
	for _, e := range f.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

type fakeGenerator struct {
	questions []models.AttemptQuestion
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, topic, difficulty string, count, optionCount int) ([]models.AttemptQuestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeRecomputer struct {
	calls []string // learnerID + "/" + courseID
	err   error
}

func (f *fakeRecomputer) RecomputeCourse(ctx context.Context, learnerID, courseID string) error {
	f.calls = append(f.calls, learnerID+"/"+courseID)
	return f.err
}
