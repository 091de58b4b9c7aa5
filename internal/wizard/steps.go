// Package wizard implements the project submission flow: a four-step form
// state machine plus the pure validation rules for each step. The state
// machine and validators are deliberately free of HTTP and database concerns
// so the API layer can validate a submission in one shot and the
// step-validation endpoint can validate a single step in isolation.
package wizard

import "github.com/bytetide-io/bytetide-backend/internal/platform"

// Step identifies one page of the submission flow
type Step int

const (
	StepBasicInfo    Step = 1 // domain + source platform selection
	StepShopifySetup Step = 2 // destination URL, access token, data-type items
	StepDataAndFiles Step = 3 // files or API credentials, per platform mode
	StepReview       Step = 4 // read-only confirmation
)

// stepSpec pairs a step with its applicability predicate. Encoding the skip
// rule as data keeps forward and backward navigation symmetric: both
// directions walk the same ordered list and skip the same steps.
type stepSpec struct {
	step       Step
	applicable func(platform.Capabilities) bool
}

func always(platform.Capabilities) bool { return true }

var stepOrder = []stepSpec{
	{StepBasicInfo, always},
	{StepShopifySetup, always},
	{StepDataAndFiles, func(c platform.Capabilities) bool {
		return c.RequiresFiles() || c.RequiresAPI()
	}},
	{StepReview, always},
}

// Next returns the step after current for the given platform capabilities.
// At the last step it returns current unchanged.
func Next(current Step, caps platform.Capabilities) Step {
	for i, s := range stepOrder {
		if s.step != current {
			continue
		}
		for _, candidate := range stepOrder[i+1:] {
			if candidate.applicable(caps) {
				return candidate.step
			}
		}
		return current
	}
	return current
}

// Prev returns the step before current for the given platform capabilities.
// At the first step it returns current unchanged.
func Prev(current Step, caps platform.Capabilities) Step {
	for i, s := range stepOrder {
		if s.step != current {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if stepOrder[j].applicable(caps) {
				return stepOrder[j].step
			}
		}
		return current
	}
	return current
}

// Applicable reports whether a step is part of the flow for the given
// platform capabilities.
func Applicable(step Step, caps platform.Capabilities) bool {
	for _, s := range stepOrder {
		if s.step == step {
			return s.applicable(caps)
		}
	}
	return false
}
