// Package wizard implements the navigation core of a step wizard.
//
// A wizard tracks which step of a fixed, ordered sequence is active and keeps
// it synchronized with an addressable location (see package location), so
// that history back/forward and direct location entry select steps.
//
// # Navigation State Engine
//
// The engine is a set of pure functions:
//   - DeriveStepIndex: active step from the location's step segment
//   - ComputeMaxStepReached: the high-water mark of visited steps
//   - PreviousTarget / NextTarget: clamped to [0, stepCount-1]
//
// GoTo and Restart targets are not clamped. An out-of-range active step
// renders nothing (Active returns false).
//
// # Location Synchronization
//
// A Wizard moves through three phases:
//
//	Initializing --Mount--> Synchronized --Unmount--> Unmounted
//
// Mount pushes BasePath+InitialStepIndex+"/" exactly once, even when the
// location already matches, and only then starts deriving state from the
// location. In Synchronized every observed location change recomputes the
// state and scrolls the viewport to the top.
//
// # Terminal Transitions
//
// Cancel and Complete push the terminal location, invoke the callback, then
// reset the viewport. At a terminal location no step content is rendered.
//
// # Usage
//
//	h := location.NewHistory("/")
//	w := wizard.New(wizard.Config{
//	    BasePath:   "/signup/",
//	    OnComplete: func(e wizard.Event) { fmt.Println("done from step", e.StepIndex) },
//	}, []string{"account", "profile", "confirm"}, h)
//
//	if err := w.Mount(ctx); err != nil {
//	    return err
//	}
//	defer w.Unmount()
//
//	w.Next()
//	content, ok := w.Active() // "profile", true
//
// Step content reaches its wizard through NewContext and FromContext; the
// nearest enclosing wizard wins.
package wizard
