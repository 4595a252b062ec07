package engine

import (
	"math"
	"time"

	"progress-service/internal/models"
)

// CourseEvaluation is the aggregator's verdict for one (learner, course).
type CourseEvaluation struct {
	CompletedModuleIDs []string
	TotalModules       int
	CompletionPct      int
	Completed          bool
}

// CompletionPct rounds 100 * completed / total. Zero total is 0%, never a
// divide-by-zero.
func CompletionPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// EvaluateCourse runs the rule evaluator over every module and rolls the
// outcomes up. The course counts as completed when every mandatory module
// is complete; incomplete optional modules lower the percentage but never
// block completion. A course where every module is optional requires all
// of them.
func EvaluateCourse(c *models.Course, ev Evidence, defaultPassScore int) (*CourseEvaluation, error) {
	eval := &CourseEvaluation{
		CompletedModuleIDs: []string{},
		TotalModules:       len(c.Modules),
	}

	mandatoryTotal := 0
	mandatoryDone := 0
	for i := range c.Modules {
		m := &c.Modules[i]
		done, err := ModuleComplete(m, ev, defaultPassScore)
		if err != nil {
			return nil, err
		}
		if done {
			eval.CompletedModuleIDs = append(eval.CompletedModuleIDs, m.ID)
		}
		if !m.Optional {
			mandatoryTotal++
			if done {
				mandatoryDone++
			}
		}
	}

	eval.CompletionPct = CompletionPct(len(eval.CompletedModuleIDs), eval.TotalModules)
	if eval.TotalModules == 0 {
		eval.Completed = false
		return eval, nil
	}
	if mandatoryTotal == 0 {
		eval.Completed = len(eval.CompletedModuleIDs) == eval.TotalModules
	} else {
		eval.Completed = mandatoryDone == mandatoryTotal
	}
	return eval, nil
}

// CourseLocked reports whether prerequisite gating hides the course: it
// stays locked until every prerequisite course is completed for this
// learner.
func CourseLocked(c *models.Course, completedCourseIDs map[string]bool) bool {
	for _, id := range c.PrerequisiteCourseIDs {
		if !completedCourseIDs[id] {
			return true
		}
	}
	return false
}

// CurrentCourseID picks the learner's "current" course: the most recently
// updated one strictly between 0% and 100%, falling back to the most
// recently updated enrolled course when nothing is mid-flight.
func CurrentCourseID(progress []models.CourseProgress) string {
	var current string
	var currentAt time.Time
	var fallback string
	var fallbackAt time.Time

	for i := range progress {
		p := &progress[i]
		if p.CompletionPct > 0 && p.CompletionPct < 100 {
			if current == "" || p.UpdatedAt.After(currentAt) {
				current = p.CourseID
				currentAt = p.UpdatedAt
			}
		}
		if fallback == "" || p.UpdatedAt.After(fallbackAt) {
			fallback = p.CourseID
			fallbackAt = p.UpdatedAt
		}
	}
	if current != "" {
		return current
	}
	return fallback
}
