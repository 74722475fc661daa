package location

// Location is an addressable position.
type Location struct {
	Path string `json:"path"`
}

// Service is the routing collaborator the wizard core consumes.
type Service interface {
	// Current returns the current location.
	Current() Location

	// Observe subscribes fn to location changes. fn is called synchronously
	// after each change. The returned function unsubscribes; it is safe to
	// call more than once.
	Observe(fn func(Location)) (cancel func())

	// Push issues a new location recorded in navigable history.
	Push(path string)

	// Param extracts a named parameter from the current location.
	Param(name string) (string, bool)
}
