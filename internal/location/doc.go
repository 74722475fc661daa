// Package location provides the addressable-location collaborator consumed by
// the wizard navigation core.
//
// A location is a string-keyed navigable position (a URL path). The Service
// interface is the whole contract the core needs:
//
//   - Current: read the current location
//   - Observe: subscribe to location changes; callbacks fire synchronously
//     after the location has changed
//   - Push: issue a new location, recorded in navigable history
//   - Param: extract a named path parameter from the current location
//
// # History
//
// History is the in-memory implementation. It keeps a back stack and a
// forward stack around the current entry, so Back and Forward behave like the
// browser buttons. Pushing truncates the forward stack.
//
//	route := location.StepRoute("/signup/")
//	h := location.NewHistory("/", route)
//	stop := h.Observe(func(loc location.Location) {
//	    fmt.Println("now at", loc.Path)
//	})
//	defer stop()
//
//	h.Push(location.StepPath("/signup/", 1)) // "now at /signup/1/"
//	h.Back()                                  // "now at /"
//
// # Routes
//
// Pattern matches paths against routes such as "/signup/:stepIndex/". The
// trailing slash is significant. A path equal to the static prefix of the
// route ("/signup/") is the index route: it matches with the parameter absent.
package location
