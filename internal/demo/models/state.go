// Package models holds the demo scenarios and the walkthrough state machine.
package models

import (
	dErrors "identrust/pkg/domain-errors"
)

// Action names a walkthrough transition.
type Action string

const (
	ActionStart      Action = "start"
	ActionNext       Action = "next"
	ActionPrevious   Action = "previous"
	ActionReset      Action = "reset"
	ActionTryAnother Action = "try_another"
)

// CompletionMessage heads the view of a finished walkthrough.
const CompletionMessage = "Demo Complete!"

// State is the walkthrough position. The zero value is idle.
type State struct {
	ScenarioID string `json:"scenario_id,omitempty"`
	Step       int    `json:"step"`
}

// Idle reports whether no scenario is running.
func (s State) Idle() bool {
	return s.ScenarioID == ""
}

// Start begins scenario id at its first step, from any state.
func (s State) Start(id string) (State, error) {
	if _, ok := FindScenario(id); !ok {
		return s, dErrors.New(dErrors.CodeNotFound, "demo scenario not found: "+id)
	}
	return State{ScenarioID: id}, nil
}

// Next advances one step. It is a no-op when idle or at the last step.
func (s State) Next() State {
	sc, ok := s.scenario()
	if !ok || s.Step >= sc.LastStep() {
		return s
	}
	s.Step++
	return s
}

// Previous goes back one step. It is a no-op when idle or at step 0.
func (s State) Previous() State {
	if _, ok := s.scenario(); !ok || s.Step <= 0 {
		return s
	}
	s.Step--
	return s
}

// Reset returns to idle.
func (s State) Reset() State {
	return State{}
}

// TryAnother returns to idle from the last step and is a no-op elsewhere.
func (s State) TryAnother() State {
	if !s.Complete() {
		return s
	}
	return State{}
}

// Complete reports whether the walkthrough sits on its last step.
func (s State) Complete() bool {
	sc, ok := s.scenario()
	return ok && s.Step == sc.LastStep()
}

// Apply runs the transition named by a. Start needs a scenario id.
func (s State) Apply(a Action, scenarioID string) (State, error) {
	switch a {
	case ActionStart:
		return s.Start(scenarioID)
	case ActionNext:
		return s.Next(), nil
	case ActionPrevious:
		return s.Previous(), nil
	case ActionReset:
		return s.Reset(), nil
	case ActionTryAnother:
		return s.TryAnother(), nil
	default:
		return s, dErrors.New(dErrors.CodeBadRequest, "unknown demo action: "+string(a))
	}
}

// scenario resolves the running scenario. A state naming an unknown
// scenario or an out of range step counts as idle.
func (s State) scenario() (Scenario, bool) {
	if s.Idle() {
		return Scenario{}, false
	}
	sc, ok := FindScenario(s.ScenarioID)
	if !ok || s.Step < 0 || s.Step > sc.LastStep() {
		return Scenario{}, false
	}
	return sc, true
}

// View is what the client renders for a state.
type View struct {
	Status            string    `json:"status"`
	Scenario          *Scenario `json:"scenario,omitempty"`
	Step              int       `json:"step"`
	StepNumber        int       `json:"step_number"`
	TotalSteps        int       `json:"total_steps"`
	CurrentStep       string    `json:"current_step,omitempty"`
	Progress          int       `json:"progress"`
	Complete          bool      `json:"complete"`
	CompletionMessage string    `json:"completion_message,omitempty"`
	Outcome           string    `json:"outcome,omitempty"`
}

const (
	StatusIdle       = "idle"
	StatusInProgress = "in_progress"
)

// Render builds the view of s.
func (s State) Render() View {
	sc, ok := s.scenario()
	if !ok {
		return View{Status: StatusIdle}
	}
	v := View{
		Status:      StatusInProgress,
		Scenario:    &sc,
		Step:        s.Step,
		StepNumber:  s.Step + 1,
		TotalSteps:  len(sc.Steps),
		CurrentStep: sc.Steps[s.Step],
		Progress:    (s.Step + 1) * 100 / len(sc.Steps),
	}
	if s.Complete() {
		v.Complete = true
		v.CompletionMessage = CompletionMessage
		v.Outcome = sc.Outcome
	}
	return v
}
