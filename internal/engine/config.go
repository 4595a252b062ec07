package engine

import (
	"fmt"
	"time"
)

// Config holds every tunable the engine reads. Nothing below is hardcoded
// in the evaluation logic itself; main builds this from the environment.
type Config struct {
	// Attempts
	QuestionCount     int           // questions per attempt
	OptionCount       int           // options per question
	ModulePassScore   int           // correct answers required by module pass_quiz rules
	GenerationTimeout time.Duration // deadline for the external generation call

	// Readiness score weights, normalized before use
	WeightCompletion  float64
	WeightAssignments float64
	WeightQuizzes     float64

	// Readiness tier cut points; score >= OnTrack is On Track,
	// score >= NeedsAttention is Needs Attention, below is At Risk.
	OnTrackThreshold        float64
	NeedsAttentionThreshold float64
}

func DefaultConfig() Config {
	return Config{
		QuestionCount:           10,
		OptionCount:             4,
		ModulePassScore:         5,
		GenerationTimeout:       60 * time.Second,
		WeightCompletion:        0.5,
		WeightAssignments:       0.3,
		WeightQuizzes:           0.2,
		OnTrackThreshold:        70,
		NeedsAttentionThreshold: 40,
	}
}

func (c Config) Validate() error {
	if c.QuestionCount <= 0 || c.OptionCount <= 1 {
		return fmt.Errorf("question count %d / option count %d out of range", c.QuestionCount, c.OptionCount)
	}
	if c.ModulePassScore < 0 || c.ModulePassScore > c.QuestionCount {
		return fmt.Errorf("module pass score %d outside 0..%d", c.ModulePassScore, c.QuestionCount)
	}
	if c.WeightCompletion < 0 || c.WeightAssignments < 0 || c.WeightQuizzes < 0 {
		return fmt.Errorf("readiness weights must be non-negative")
	}
	if c.WeightCompletion+c.WeightAssignments+c.WeightQuizzes == 0 {
		return fmt.Errorf("at least one readiness weight must be positive")
	}
	if c.OnTrackThreshold <= c.NeedsAttentionThreshold {
		return fmt.Errorf("tier thresholds not monotonic: on-track %.1f <= needs-attention %.1f",
			c.OnTrackThreshold, c.NeedsAttentionThreshold)
	}
	return nil
}
