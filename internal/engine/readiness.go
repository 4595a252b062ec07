package engine

import "math"

type ReadinessTier string

const (
	TierOnTrack        ReadinessTier = "On Track"
	TierNeedsAttention ReadinessTier = "Needs Attention"
	TierAtRisk         ReadinessTier = "At Risk"
)

// ReadinessInputs are the signals the score combines. The Has* flags mark
// whether a signal exists at all; an absent signal's weight redistributes
// to the present ones instead of dragging the score to zero.
type ReadinessInputs struct {
	AvgCompletionPct   float64 // 0..100 across enrolled courses
	HasAssignments     bool
	AssignmentPassRate float64 // 0..1 of reviewed assignments passed
	HasQuizzes         bool
	QuizPassRate       float64 // 0..1 of gating quizzes passed
}

// Readiness is derived on every read, never persisted as ground truth.
type Readiness struct {
	Score float64       `json:"score"` // 0..100
	Tier  ReadinessTier `json:"tier"`

	CompletionComponent float64 `json:"completion_component"`
	AssignmentComponent float64 `json:"assignment_component"`
	QuizComponent       float64 `json:"quiz_component"`
}

// ComputeReadiness combines the weighted signals into a 0..100 score and a
// tier. Weights come from config; tiering is monotonic by construction
// (Config.Validate enforces ordered cut points), so a higher score can
// never land in a worse tier.
func ComputeReadiness(in ReadinessInputs, cfg Config) Readiness {
	wC := cfg.WeightCompletion
	wA := cfg.WeightAssignments
	wQ := cfg.WeightQuizzes
	if !in.HasAssignments {
		wA = 0
	}
	if !in.HasQuizzes {
		wQ = 0
	}

	total := wC + wA + wQ
	if total == 0 {
		// No signals at all: brand-new learner.
		return Readiness{Score: 0, Tier: tierFor(0, cfg)}
	}
	wC /= total
	wA /= total
	wQ /= total

	completion := clamp(in.AvgCompletionPct, 0, 100)
	assignments := clamp(in.AssignmentPassRate, 0, 1) * 100
	quizzes := clamp(in.QuizPassRate, 0, 1) * 100

	score := wC*completion + wA*assignments + wQ*quizzes
	score = math.Round(score*10) / 10

	return Readiness{
		Score:               score,
		Tier:                tierFor(score, cfg),
		CompletionComponent: completion,
		AssignmentComponent: assignments,
		QuizComponent:       quizzes,
	}
}

func tierFor(score float64, cfg Config) ReadinessTier {
	switch {
	case score >= cfg.OnTrackThreshold:
		return TierOnTrack
	case score >= cfg.NeedsAttentionThreshold:
		return TierNeedsAttention
	default:
		return TierAtRisk
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
