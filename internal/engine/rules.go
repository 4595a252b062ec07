package engine

import (
	"fmt"

	"progress-service/internal/models"
)

// Evidence is the learner's recorded facts for one course, assembled from
// append-only records and submitted attempts. Evaluation over it is pure:
// identical evidence always yields identical results.
type Evidence struct {
	// WatchedContentIDs holds every content item the learner marked viewed.
	WatchedContentIDs map[string]bool
	// Submissions by assignment reference.
	Submissions map[string]SubmissionEvidence
	// Quizzes by quiz reference, folded over all submitted attempts.
	Quizzes map[string]QuizEvidence
}

type SubmissionEvidence struct {
	Submitted bool
	Reviewed  bool
	Passed    bool // review outcome, meaningful only when Reviewed
}

type QuizEvidence struct {
	BestScore      int
	TotalQuestions int
	// PassingPct is the instructor quiz's configured percentage threshold,
	// 0 when the reference has no Quiz document (AI practice) or none set.
	PassingPct float64
}

func NewEvidence() Evidence {
	return Evidence{
		WatchedContentIDs: make(map[string]bool),
		Submissions:       make(map[string]SubmissionEvidence),
		Quizzes:           make(map[string]QuizEvidence),
	}
}

// AddAttempt folds one submitted attempt into the quiz evidence, keeping
// the best score ever. A learner who passed once keeps module credit even
// if a later retake scores worse.
func (ev *Evidence) AddAttempt(a *models.QuizAttempt) {
	if a.Status != models.AttemptSubmitted || a.QuizRef == "" {
		return
	}
	q, ok := ev.Quizzes[a.QuizRef]
	if !ok || a.Score > q.BestScore {
		ev.Quizzes[a.QuizRef] = QuizEvidence{
			BestScore:      a.Score,
			TotalQuestions: len(a.Questions),
			PassingPct:     q.PassingPct,
		}
	}
}

// SetQuizThreshold stamps an instructor quiz's configured percentage onto
// the evidence, creating an empty entry when the learner has no attempts.
func (ev *Evidence) SetQuizThreshold(quizRef string, passingPct float64) {
	q := ev.Quizzes[quizRef]
	q.PassingPct = passingPct
	ev.Quizzes[quizRef] = q
}

// AddRecord folds one evidence record in.
func (ev *Evidence) AddRecord(rec *models.EvidenceRecord) {
	switch rec.Kind {
	case models.EvidenceVideoWatched:
		ev.WatchedContentIDs[rec.RefID] = true
	case models.EvidenceAssignmentSubmitted:
		sub := ev.Submissions[rec.RefID]
		sub.Submitted = true
		ev.Submissions[rec.RefID] = sub
	case models.EvidenceAssignmentReviewed:
		sub := ev.Submissions[rec.RefID]
		sub.Submitted = true
		sub.Reviewed = true
		if rec.GradePass != nil {
			sub.Passed = *rec.GradePass
		}
		ev.Submissions[rec.RefID] = sub
	}
}

// ModuleComplete evaluates a module's rule set with AND semantics: the
// module is complete only when every rule holds. A module with no rules
// and no content items is vacuously complete; one with content but no
// explicit rules still requires the content to be watched.
// defaultPassScore applies to pass_quiz rules that leave PassScore unset
// and reference a quiz without a configured percentage.
func ModuleComplete(m *models.Module, ev Evidence, defaultPassScore int) (bool, error) {
	if len(m.CompletionRules) == 0 {
		return allWatched(m.ContentItemIDs, ev), nil
	}
	for i := range m.CompletionRules {
		ok, err := ruleSatisfied(m, &m.CompletionRules[i], ev, defaultPassScore)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func ruleSatisfied(m *models.Module, r *models.Rule, ev Evidence, defaultPassScore int) (bool, error) {
	switch r.Kind {
	case models.RuleWatchVideos:
		return allWatched(m.ContentItemIDs, ev), nil

	case models.RulePassQuiz:
		q, ok := ev.Quizzes[r.QuizRef]
		if !ok {
			return false, nil
		}
		// Explicit rule threshold wins; otherwise the instructor quiz's
		// configured percentage; otherwise the default correct count.
		if r.PassScore > 0 {
			return q.BestScore >= r.PassScore, nil
		}
		if q.PassingPct > 0 {
			return PassedPct(q.BestScore, q.TotalQuestions, q.PassingPct), nil
		}
		return q.BestScore >= defaultPassScore, nil

	case models.RuleSubmitAssignment:
		sub, ok := ev.Submissions[r.AssignmentRef]
		if !ok || !sub.Submitted {
			return false, nil
		}
		if r.RequirePassingGrade {
			return sub.Reviewed && sub.Passed, nil
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown completion rule kind %q on module %s", r.Kind, m.ID)
	}
}

// BuildEvidence assembles the snapshot from append-only records, submitted
// attempts and the course's instructor quizzes (for their configured
// percentage thresholds).
func BuildEvidence(records []models.EvidenceRecord, attempts []models.QuizAttempt, quizzes []models.Quiz) Evidence {
	ev := NewEvidence()
	for i := range records {
		ev.AddRecord(&records[i])
	}
	for i := range attempts {
		ev.AddAttempt(&attempts[i])
	}
	for i := range quizzes {
		if quizzes[i].PassingScore > 0 {
			ev.SetQuizThreshold(quizzes[i].ID, quizzes[i].PassingScore)
		}
	}
	return ev
}

func allWatched(contentItemIDs []string, ev Evidence) bool {
	for _, id := range contentItemIDs {
		if !ev.WatchedContentIDs[id] {
			return false
		}
	}
	return true
}
