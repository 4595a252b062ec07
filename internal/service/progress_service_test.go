package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/event"
	"progress-service/internal/models"
)

type progressFixture struct {
	service  *ProgressService
	courses  *fakeCourseStore
	paths    *fakePathStore
	progress *fakeProgressStore
	evidence *fakeEvidenceStore
	attempts *fakeAttemptStore
	quizzes  *fakeQuizStore
	certs    *fakeCertificateStore
	pub      *fakePublisher
}

func newProgressFixture(courses ...*models.Course) *progressFixture {
	f := &progressFixture{
		courses:  newFakeCourseStore(courses...),
		paths:    &fakePathStore{paths: make(map[string]*models.LearningPath)},
		progress: newFakeProgressStore(),
		evidence: &fakeEvidenceStore{},
		attempts: newFakeAttemptStore(),
		quizzes:  &fakeQuizStore{quizzes: make(map[string]*models.Quiz)},
		certs:    newFakeCertificateStore(),
		pub:      &fakePublisher{},
	}
	f.service = NewProgressService(f.courses, f.paths, f.progress, f.evidence, f.attempts, f.quizzes, f.certs, engine.DefaultConfig(), f.pub)
	f.service.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return f
}

// Four-module course, one optional, all gated on watching a single video.
func fourModuleCourse(id string) *models.Course {
	return &models.Course{
		ID:       id,
		PathSlug: "security-analyst",
		Status:   models.CoursePublished,
		Modules: []models.Module{
			{ID: "m1", ContentItemIDs: []string{id + "-v1"}},
			{ID: "m2", ContentItemIDs: []string{id + "-v2"}},
			{ID: "m3", ContentItemIDs: []string{id + "-v3"}},
			{ID: "m4", Optional: true, ContentItemIDs: []string{id + "-v4"}},
		},
	}
}

func (f *progressFixture) watch(learnerID, courseID, refID string) {
	f.evidence.records = append(f.evidence.records, models.EvidenceRecord{
		LearnerID: learnerID,
		CourseID:  courseID,
		Kind:      models.EvidenceVideoWatched,
		RefID:     refID,
	})
}

func TestRecomputeCourse_DerivesProgress(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")
	f.watch("learner-1", "course-1", "course-1-v2")

	if err := f.service.RecomputeCourse(context.Background(), "learner-1", "course-1"); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	row, _ := f.progress.FindByLearnerAndCourse(context.Background(), "learner-1", "course-1")
	if row == nil {
		t.Fatal("no progress row written")
	}
	if row.CompletionPct != 50 {
		t.Errorf("pct = %d, want 50", row.CompletionPct)
	}
	if row.CourseCompleted {
		t.Error("course marked completed with a mandatory module open")
	}
	if f.pub.count(event.TopicModuleCompleted) != 2 {
		t.Errorf("module completion events = %d, want 2", f.pub.count(event.TopicModuleCompleted))
	}
}

func TestRecomputeCourse_ModuleEventsFireOncePerTransition(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")

	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")

	if got := f.pub.count(event.TopicModuleCompleted); got != 1 {
		t.Errorf("module events = %d, want 1 (no re-announcement on recompute)", got)
	}
}

func TestRecomputeCourse_CertificateOnCompletionTransition(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")
	f.watch("learner-1", "course-1", "course-1-v2")
	f.watch("learner-1", "course-1", "course-1-v3")

	if err := f.service.RecomputeCourse(context.Background(), "learner-1", "course-1"); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	certs, _ := f.certs.FindByLearner(context.Background(), "learner-1")
	if len(certs) != 1 {
		t.Fatalf("certificates = %d, want 1", len(certs))
	}
	if certs[0].Status != models.CertificateIssued {
		t.Errorf("status = %s, want issued", certs[0].Status)
	}
	if f.pub.count(event.TopicCertificateIssued) != 1 {
		t.Error("issuance event not published")
	}
	if f.pub.count(event.TopicCourseCompleted) != 1 {
		t.Error("course completion event not published")
	}

	// Re-running the pipeline on an already-completed course issues nothing.
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")

	certs, _ = f.certs.FindByLearner(context.Background(), "learner-1")
	if len(certs) != 1 {
		t.Errorf("certificates after recomputes = %d, want still 1", len(certs))
	}
	if f.pub.count(event.TopicCertificateIssued) != 1 {
		t.Error("duplicate issuance event published")
	}
}

// Different learners finishing the same course on the same day each get
// their own certificate; one learner's insert must never swallow another's.
func TestRecomputeCourse_CertificatePerLearnerSameDay(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	for _, learner := range []string{"learner-1", "learner-2"} {
		f.watch(learner, "course-1", "course-1-v1")
		f.watch(learner, "course-1", "course-1-v2")
		f.watch(learner, "course-1", "course-1-v3")
		if err := f.service.RecomputeCourse(context.Background(), learner, "course-1"); err != nil {
			t.Fatalf("recompute for %s failed: %v", learner, err)
		}
	}

	first, _ := f.certs.FindIssued(context.Background(), "learner-1", "course-1")
	second, _ := f.certs.FindIssued(context.Background(), "learner-2", "course-1")
	if first == nil || second == nil {
		t.Fatalf("both learners should hold an issued certificate, got %v and %v", first, second)
	}
	if first.ID == second.ID {
		t.Errorf("learners share certificate id %s", first.ID)
	}
	if f.pub.count(event.TopicCertificateIssued) != 2 {
		t.Errorf("issuance events = %d, want 2", f.pub.count(event.TopicCertificateIssued))
	}
}

// A module rule without its own threshold defers to the instructor quiz's
// configured passing percentage.
func TestRecomputeCourse_QuizGatedByConfiguredPercentage(t *testing.T) {
	course := &models.Course{
		ID:       "course-1",
		PathSlug: "security-analyst",
		Status:   models.CoursePublished,
		Modules: []models.Module{
			{ID: "m1", CompletionRules: []models.Rule{
				{Kind: models.RulePassQuiz, QuizRef: "quiz-threats"},
			}},
		},
	}
	f := newProgressFixture(course)
	f.quizzes.quizzes["quiz-threats"] = &models.Quiz{
		ID:           "quiz-threats",
		CourseRef:    "course-1",
		PassingScore: 80,
	}

	submit := func(id string, score int) {
		f.attempts.Create(context.Background(), &models.QuizAttempt{
			ID:        id,
			OwnerID:   "learner-1",
			CourseRef: "course-1",
			QuizRef:   "quiz-threats",
			Questions: make([]models.AttemptQuestion, 10),
			Status:    models.AttemptSubmitted,
			Score:     score,
		})
	}

	submit("a1", 7)
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")
	row, _ := f.progress.FindByLearnerAndCourse(context.Background(), "learner-1", "course-1")
	if row.CourseCompleted {
		t.Fatal("7/10 should not clear the quiz's 80% threshold")
	}

	submit("a2", 8)
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")
	row, _ = f.progress.FindByLearnerAndCourse(context.Background(), "learner-1", "course-1")
	if !row.CourseCompleted {
		t.Fatal("8/10 should clear the quiz's 80% threshold")
	}
}

// A crash between the progress write and the certificate write leaves a
// completed row without a certificate. The guard only watches the stored
// transition, so the next recompute must heal the gap via the existing-
// certificate check rather than the transition.
func TestRecomputeCourse_RevokedCertificateNeverReissues(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")
	f.watch("learner-1", "course-1", "course-1-v2")
	f.watch("learner-1", "course-1", "course-1-v3")

	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")
	certs, _ := f.certs.FindByLearner(context.Background(), "learner-1")
	if len(certs) != 1 {
		t.Fatalf("setup: certificates = %d, want 1", len(certs))
	}

	// Revoke, then force a fresh completion transition by resetting the row.
	revoked := certs[0]
	revoked.Status = models.CertificateRevoked
	f.certs.certs[revoked.ID] = &revoked
	row, _ := f.progress.FindByLearnerAndCourse(context.Background(), "learner-1", "course-1")
	row.CourseCompleted = false
	f.progress.Upsert(context.Background(), row)

	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")

	certs, _ = f.certs.FindByLearner(context.Background(), "learner-1")
	issued := 0
	for _, c := range certs {
		if c.Status == models.CertificateIssued {
			issued++
		}
	}
	if issued != 0 {
		// The same-day deterministic ID collides with the revoked record, so
		// the insert is a no-op and the revocation stands.
		t.Errorf("issued certificates = %d, want 0 after revocation", issued)
	}
}

func TestRecomputeCourse_UnknownCourse(t *testing.T) {
	f := newProgressFixture()
	err := f.service.RecomputeCourse(context.Background(), "learner-1", "missing")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProgress_PathMode(t *testing.T) {
	foundation := fourModuleCourse("foundation")
	advanced := fourModuleCourse("advanced")
	advanced.PrerequisiteCourseIDs = []string{"foundation"}

	f := newProgressFixture(foundation, advanced)
	f.paths.paths["security-analyst"] = &models.LearningPath{
		Slug:      "security-analyst",
		Role:      "security_analyst",
		CourseIDs: []string{"foundation", "advanced"},
	}
	f.watch("learner-1", "foundation", "foundation-v1")

	report, err := f.service.GetProgress(context.Background(), "learner-1", "security-analyst")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if len(report.CourseProgress) != 2 {
		t.Fatalf("rows = %d, want both path courses (touched or not)", len(report.CourseProgress))
	}
	if len(report.LockedCourseIDs) != 1 || report.LockedCourseIDs[0] != "advanced" {
		t.Errorf("locked = %v, want [advanced]", report.LockedCourseIDs)
	}
	if report.CurrentCourseID != "foundation" {
		t.Errorf("current course = %q, want foundation", report.CurrentCourseID)
	}
}

func TestGetProgress_PathUnlocksAfterPrerequisite(t *testing.T) {
	foundation := fourModuleCourse("foundation")
	advanced := fourModuleCourse("advanced")
	advanced.PrerequisiteCourseIDs = []string{"foundation"}

	f := newProgressFixture(foundation, advanced)
	f.paths.paths["security-analyst"] = &models.LearningPath{Slug: "security-analyst"}
	f.watch("learner-1", "foundation", "foundation-v1")
	f.watch("learner-1", "foundation", "foundation-v2")
	f.watch("learner-1", "foundation", "foundation-v3")

	report, err := f.service.GetProgress(context.Background(), "learner-1", "security-analyst")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if len(report.LockedCourseIDs) != 0 {
		t.Errorf("locked = %v, want none after the prerequisite completed", report.LockedCourseIDs)
	}
}

func TestGetProgress_UnknownPath(t *testing.T) {
	f := newProgressFixture()
	_, err := f.service.GetProgress(context.Background(), "learner-1", "no-such-path")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProgress_NoPathRecomputesExistingRows(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")
	f.service.RecomputeCourse(context.Background(), "learner-1", "course-1")

	// New evidence lands without an explicit recompute; the read heals it.
	f.watch("learner-1", "course-1", "course-1-v2")

	report, err := f.service.GetProgress(context.Background(), "learner-1", "")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if len(report.CourseProgress) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.CourseProgress))
	}
	if report.CourseProgress[0].CompletionPct != 50 {
		t.Errorf("pct = %d, want freshly recomputed 50", report.CourseProgress[0].CompletionPct)
	}
}

func TestGetProgress_KeepsRowForRemovedCourse(t *testing.T) {
	f := newProgressFixture()
	f.progress.Upsert(context.Background(), &models.CourseProgress{
		LearnerID:     "learner-1",
		CourseID:      "retired-course",
		CompletionPct: 40,
	})

	report, err := f.service.GetProgress(context.Background(), "learner-1", "")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if len(report.CourseProgress) != 1 || report.CourseProgress[0].CourseID != "retired-course" {
		t.Fatalf("rows = %+v, want the stored row preserved", report.CourseProgress)
	}
}

func TestGetProgress_EmptyLearner(t *testing.T) {
	f := newProgressFixture()
	report, err := f.service.GetProgress(context.Background(), "brand-new", "")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if len(report.CourseProgress) != 0 || len(report.Certificates) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if report.Readiness.Score != 0 {
		t.Errorf("readiness score = %.1f, want 0", report.Readiness.Score)
	}
}

func TestGetProgress_ReadinessUsesAllSignals(t *testing.T) {
	f := newProgressFixture(fourModuleCourse("course-1"))
	f.watch("learner-1", "course-1", "course-1-v1")
	f.watch("learner-1", "course-1", "course-1-v2")

	pass := true
	f.evidence.records = append(f.evidence.records, models.EvidenceRecord{
		LearnerID: "learner-1",
		CourseID:  "course-1",
		Kind:      models.EvidenceAssignmentReviewed,
		RefID:     "hw-1",
		GradePass: &pass,
	})

	questions := make([]models.AttemptQuestion, 10)
	f.attempts.Create(context.Background(), &models.QuizAttempt{
		ID:        "a1",
		OwnerID:   "learner-1",
		CourseRef: "course-1",
		QuizRef:   "quiz-1",
		Questions: questions,
		Status:    models.AttemptSubmitted,
		Score:     8,
	})
	f.attempts.Create(context.Background(), &models.QuizAttempt{
		ID:        "a2",
		OwnerID:   "learner-1",
		CourseRef: "course-1",
		QuizRef:   "quiz-1",
		Questions: questions,
		Status:    models.AttemptSubmitted,
		Score:     2,
	})

	if err := f.service.RecomputeCourse(context.Background(), "learner-1", "course-1"); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	report, err := f.service.GetProgress(context.Background(), "learner-1", "")
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}

	// Completion 50, assignments 100%, quizzes 1 of 2 passed at the default
	// threshold: 0.5*50 + 0.3*100 + 0.2*50 = 65.
	if report.Readiness.Score != 65 {
		t.Errorf("score = %.1f, want 65", report.Readiness.Score)
	}
	if report.Readiness.Tier != engine.TierNeedsAttention {
		t.Errorf("tier = %s, want Needs Attention", report.Readiness.Tier)
	}
}
