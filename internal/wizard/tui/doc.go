// Package tui implements the terminal host for a stepwise wizard.
//
// The model mounts a wizard.Wizard over an in-memory location.History and
// renders whatever the wizard reports as active. Keys map onto the wizard's
// navigation triggers; the history keys ([ and ]) move through the location
// history the way browser back/forward would, and the wizard folds those
// changes back into its state like any other location change.
//
// # Screens
//
//   - Step: progress line, step title and the step body in a scrolling viewport
//   - No content: the location names a step index outside the definition
//   - Cancelled / Completed: the terminal locations; "s" mounts a fresh wizard
//
// All screens use RenderApplicationContainer for a header, content area and
// context-sensitive help footer.
//
// # Usage Example
//
//	def, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	result, err := tui.Run(ctx, def, tui.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Outcome)
package tui
