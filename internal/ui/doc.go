// Package ui renders the non-interactive output of the stepwise commands:
// success, failure and warning result boxes, and a yes/no confirmation
// prompt used before overwriting files.
//
// # Usage Example
//
//	fmt.Println(ui.NewSuccessResult("onboarding.yaml is valid",
//	    ui.Detail{Key: "Steps", Value: "4"},
//	).Render())
//
//	if !ui.Confirm(os.Stdin, os.Stdout, "File exists", []string{path}, "Overwrite?") {
//	    return nil
//	}
package ui
