package models

import "time"

type AttemptStatus string

const (
	AttemptGenerated  AttemptStatus = "generated"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// AnswerNone marks an unanswered or malformed answer slot. It never matches
// a correct index, so it always scores as incorrect.
const AnswerNone = -1

// AttemptQuestion is one question frozen into an attempt at generation
// time, correct index included, so re-scoring is reproducible forever.
type AttemptQuestion struct {
	Content      string   `bson:"content" json:"content"`
	Options      []string `bson:"options" json:"options"`
	CorrectIndex int      `bson:"correct_index" json:"correct_index"`
	Explanation  string   `bson:"explanation" json:"explanation"`
}

type QuizAttempt struct {
	ID          string            `bson:"_id,omitempty" json:"id"`
	OwnerID     string            `bson:"owner_id" json:"owner_id"`
	CourseRef   string            `bson:"course_ref" json:"course_ref"`
	QuizRef     string            `bson:"quiz_ref,omitempty" json:"quiz_ref,omitempty"` // empty for AI practice attempts
	Topic       string            `bson:"topic" json:"topic"`
	Difficulty  string            `bson:"difficulty" json:"difficulty"`
	Questions   []AttemptQuestion `bson:"questions" json:"questions"`
	Answers     []int             `bson:"answers" json:"answers"`
	Status      AttemptStatus     `bson:"status" json:"status"`
	Score       int               `bson:"score" json:"score"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	SubmittedAt *time.Time        `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
}

// LearnerQuestion is the learner-facing shape of an attempt question.
type LearnerQuestion struct {
	Content string   `json:"content"`
	Options []string `json:"options"`
}

// LearnerView strips correct indices and explanations from an attempt that
// has not been submitted yet. Submitted attempts are returned whole.
type LearnerAttempt struct {
	ID         string            `json:"id"`
	CourseRef  string            `json:"course_ref"`
	QuizRef    string            `json:"quiz_ref,omitempty"`
	Topic      string            `json:"topic"`
	Difficulty string            `json:"difficulty"`
	Questions  []LearnerQuestion `json:"questions"`
	Answers    []int             `json:"answers"`
	Status     AttemptStatus     `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (a *QuizAttempt) LearnerView() LearnerAttempt {
	questions := make([]LearnerQuestion, len(a.Questions))
	for i, q := range a.Questions {
		questions[i] = LearnerQuestion{Content: q.Content, Options: q.Options}
	}
	answers := make([]int, len(a.Answers))
	copy(answers, a.Answers)
	return LearnerAttempt{
		ID:         a.ID,
		CourseRef:  a.CourseRef,
		QuizRef:    a.QuizRef,
		Topic:      a.Topic,
		Difficulty: a.Difficulty,
		Questions:  questions,
		Answers:    answers,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
	}
}
