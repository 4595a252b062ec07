package engine

import (
	"math"
	"time"

	"progress-service/internal/models"
)

// The attempt lifecycle is generated -> in_progress -> submitted with no
// regression. A retake is always a brand-new attempt; submitted attempts
// are immutable history.

// QuestionFeedback is the per-question explanation returned after submit.
type QuestionFeedback struct {
	QuestionIndex int    `json:"question_index"`
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correct_index"`
	Explanation   string `json:"explanation"`
}

// SubmitResult is what submitQuiz returns to the caller.
type SubmitResult struct {
	Score          int                `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	CorrectAnswers []int              `json:"correct_answers"`
	Feedback       []QuestionFeedback `json:"feedback"`
}

// EmptyAnswers returns an all-unanswered answers slice.
func EmptyAnswers(n int) []int {
	answers := make([]int, n)
	for i := range answers {
		answers[i] = models.AnswerNone
	}
	return answers
}

// NormalizeAnswer maps any out-of-range option index to the unanswered
// sentinel. A malformed entry scores as incorrect rather than failing the
// whole submission.
func NormalizeAnswer(optionIndex, optionCount int) int {
	if optionIndex < 0 || optionIndex >= optionCount {
		return models.AnswerNone
	}
	return optionIndex
}

// SaveAnswer records one answer on an open attempt and moves a freshly
// generated attempt to in_progress. Answers stay provisional until submit.
func SaveAnswer(a *models.QuizAttempt, questionIndex, optionIndex, optionCount int) error {
	if a.Status == models.AttemptSubmitted {
		return &AlreadySubmittedError{AttemptID: a.ID, Score: a.Score}
	}
	if questionIndex < 0 || questionIndex >= len(a.Questions) {
		return &ValidationError{Field: "question_index", Reason: "out of range"}
	}
	a.Answers[questionIndex] = NormalizeAnswer(optionIndex, optionCount)
	if a.Status == models.AttemptGenerated {
		a.Status = models.AttemptInProgress
	}
	return nil
}

// Submit scores an attempt against its immutable snapshot and transitions
// it to submitted. Resubmitting fails with AlreadySubmittedError carrying
// the original score; the stored record is never rescored.
func Submit(a *models.QuizAttempt, answers []int, optionCount int, now time.Time) (*SubmitResult, error) {
	if a.Status == models.AttemptSubmitted {
		return nil, &AlreadySubmittedError{AttemptID: a.ID, Score: a.Score}
	}
	if len(answers) != len(a.Questions) {
		return nil, &ValidationError{Field: "answers", Reason: "length does not match question count"}
	}

	normalized := make([]int, len(answers))
	for i, ans := range answers {
		normalized[i] = NormalizeAnswer(ans, optionCount)
	}

	score := 0
	correct := make([]int, len(a.Questions))
	feedback := make([]QuestionFeedback, len(a.Questions))
	for i, q := range a.Questions {
		hit := normalized[i] == q.CorrectIndex
		if hit {
			score++
		}
		correct[i] = q.CorrectIndex
		feedback[i] = QuestionFeedback{
			QuestionIndex: i,
			Correct:       hit,
			CorrectIndex:  q.CorrectIndex,
			Explanation:   q.Explanation,
		}
	}

	a.Answers = normalized
	a.Score = score
	a.Status = models.AttemptSubmitted
	submittedAt := now.UTC()
	a.SubmittedAt = &submittedAt

	return &SubmitResult{
		Score:          score,
		TotalQuestions: len(a.Questions),
		CorrectAnswers: correct,
		Feedback:       feedback,
	}, nil
}

// Passed reports whether a submitted attempt meets an absolute correct
// count, the threshold form module pass_quiz rules use.
func Passed(a *models.QuizAttempt, passScore int) bool {
	return a.Status == models.AttemptSubmitted && a.Score >= passScore
}

// PassedPct reports whether score out of total meets a percentage
// threshold, the form instructor-authored quizzes configure.
func PassedPct(score, total int, passingScore float64) bool {
	if total <= 0 {
		return false
	}
	pct := 100 * float64(score) / float64(total)
	return pct >= passingScore || math.Abs(pct-passingScore) < 1e-9
}
