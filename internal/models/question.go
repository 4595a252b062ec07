package models

// Question is a bank question belonging to an instructor-authored quiz.
// Attempts never reference bank questions directly; generation copies them
// into the attempt snapshot so later edits cannot change a recorded score.
type Question struct {
	ID           string   `bson:"_id,omitempty" json:"id"`
	QuizID       string   `bson:"quiz_id" json:"quiz_id"`
	Content      string   `bson:"content" json:"content"`
	Options      []string `bson:"options" json:"options"`
	CorrectIndex int      `bson:"correct_index" json:"correct_index"`
	Explanation  string   `bson:"explanation" json:"explanation"`
	Status       string   `bson:"status" json:"status"`
}

// Snapshot converts a bank question into the immutable per-attempt form.
func (q *Question) Snapshot() AttemptQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return AttemptQuestion{
		Content:      q.Content,
		Options:      opts,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
}
