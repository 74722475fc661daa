package wizard

import (
	"strconv"
	"strings"
)

// State is derived from the current location on every change.
type State struct {
	// StepIndex is the active step, never negative
	StepIndex int
	// MaxStepReached is the high-water mark of StepIndex for this mount
	MaxStepReached int
	// IsFirstRender is true until the initial redirect has completed
	IsFirstRender bool
	// Path is the location the state was derived from
	Path string
}

// CommandKind names the trigger that produced a navigation command.
type CommandKind string

const (
	CommandInitial  CommandKind = "initial"
	CommandPrevious CommandKind = "previous"
	CommandNext     CommandKind = "next"
	CommandGoTo     CommandKind = "goto"
	CommandRestart  CommandKind = "restart"
	CommandCancel   CommandKind = "cancel"
	CommandComplete CommandKind = "complete"
)

// Command is a location change issued by the wizard.
type Command struct {
	Kind CommandKind
	// Target is the step index for step commands, -1 for terminal ones
	Target int
	Path   string
}

// DeriveStepIndex computes the active step. On the first render the location
// has not been reconciled yet, so initial wins. Otherwise segment (the step
// parameter of the location, empty when absent) is parsed with
// ParseStepIndex. The result is not bounded by the step count.
func DeriveStepIndex(segment string, isFirstRender bool, initial int) int {
	if isFirstRender {
		return initial
	}
	return ParseStepIndex(segment)
}

// ParseStepIndex reads the leading base-10 digits of a step segment after
// optional leading whitespace, so "2abc" is 2. A segment without leading
// digits (empty, "abc", "-3") or one that overflows resolves to 0.
func ParseStepIndex(segment string) int {
	s := strings.TrimLeft(segment, " \t\n\r")
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// ComputeMaxStepReached returns the new high-water mark.
func ComputeMaxStepReached(previousMax, current int) int {
	return max(previousMax, current)
}

// PreviousTarget is the step the previous trigger moves to.
func PreviousTarget(current int) int {
	return max(current-1, 0)
}

// NextTarget is the step the next trigger moves to. With no steps it stays
// at 0 so the index never goes negative.
func NextTarget(current, stepCount int) int {
	return max(min(current+1, stepCount-1), 0)
}
