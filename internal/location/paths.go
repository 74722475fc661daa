package location

import "strconv"

// Default locations used when a wizard leaves them unset.
const (
	// DefaultBasePath is the prefix under which step locations are addressed
	DefaultBasePath = "/"

	// DefaultCancelledPath is the terminal location reached by cancelling
	DefaultCancelledPath = "/"

	// DefaultCompletedPath is the terminal location reached by completing
	DefaultCompletedPath = "/completed/"
)

// StepIndexParam is the route parameter carrying the step index.
const StepIndexParam = "stepIndex"

// StepPath returns the location of step i under base: "${base}${i}/".
func StepPath(base string, i int) string {
	return base + strconv.Itoa(i) + "/"
}

// StepRoute returns the route matching step locations under base.
func StepRoute(base string) *Pattern {
	return MustCompile(base + ":" + StepIndexParam + "/")
}
