package model

import "fmt"

// Stage is one of the six fixed pipeline stages, ordered by ordinal.
type Stage int

const (
	// StageContact ...
	StageContact Stage = 1

	// StageMeet ...
	StageMeet Stage = 2

	// StageClose ...
	StageClose Stage = 3

	// StageDecision ...
	StageDecision Stage = 4

	// StageThank ...
	StageThank Stage = 5

	// StageNextSteps ...
	StageNextSteps Stage = 6
)

var stageNames = map[Stage]string{
	StageContact:   "contact",
	StageMeet:      "meet",
	StageClose:     "close",
	StageDecision:  "decision",
	StageThank:     "thank",
	StageNextSteps: "next_steps",
}

var stageValues = map[string]Stage{
	"contact":    StageContact,
	"meet":       StageMeet,
	"close":      StageClose,
	"decision":   StageDecision,
	"thank":      StageThank,
	"next_steps": StageNextSteps,
}

// AllStages in pipeline order.
func AllStages() []Stage {
	return []Stage{
		StageContact, StageMeet, StageClose,
		StageDecision, StageThank, StageNextSteps,
	}
}

// String ...
func (s Stage) String() string {
	name, ok := stageNames[s]
	if !ok {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return name
}

// Valid ...
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// ParseStage returns the stage for a wire name.
func ParseStage(name string) (Stage, bool) {
	s, ok := stageValues[name]
	return s, ok
}

// TransitionKind classifies how a stage event arrived relative to the
// membership's current stage.
type TransitionKind int

const (
	// TransitionSequential ...
	TransitionSequential TransitionKind = 1

	// TransitionSkipped ...
	TransitionSkipped TransitionKind = 2

	// TransitionRevisited ...
	TransitionRevisited TransitionKind = 3
)

// String ...
func (k TransitionKind) String() string {
	switch k {
	case TransitionSequential:
		return "sequential"
	case TransitionSkipped:
		return "skipped"
	case TransitionRevisited:
		return "revisited"
	default:
		return fmt.Sprintf("transition(%d)", int(k))
	}
}

// Transition is the result of classifying a stage event against the
// current projection. Skipped holds the stages bypassed when the target
// is more than one stage ahead, in pipeline order.
type Transition struct {
	Kind    TransitionKind
	Skipped []Stage
}

// Warning reports whether the transition should surface a non-blocking
// notice to the caller. Sequencing anomalies never fail the write.
func (t Transition) Warning() bool {
	return t.Kind != TransitionSequential
}

// ClassifyTransition compares the target stage against the membership's
// current stage. Same-stage and next-stage events are sequential; moving
// ahead by more than one records the bypassed stages; moving backward is
// a revisit. The classification is informational only.
func ClassifyTransition(current, target Stage) Transition {
	if target > current+1 {
		var skipped []Stage
		for s := current + 1; s < target; s++ {
			skipped = append(skipped, s)
		}
		return Transition{Kind: TransitionSkipped, Skipped: skipped}
	}
	if target < current {
		return Transition{Kind: TransitionRevisited}
	}
	return Transition{Kind: TransitionSequential}
}
