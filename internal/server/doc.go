// Package server hosts a stepwise wizard over HTTP.
//
// Step locations are real URL paths, so the browser's address bar, its
// back/forward buttons and bookmarks all drive the wizard. Each browser gets
// a session (cookie "stepwise_session") holding its own location history and
// one mounted wizard.Wizard. A request for a step path is fed to the history
// the way a browser navigation would be; when the wizard pushes a different
// location (the initial redirect, or a navigation trigger) the response is a
// 303 See Other to that location.
//
// # Routes
//
//	GET  {base}, {base}N/          step page (N is the step index)
//	GET  cancelled/completed path  terminal page
//	GET|POST /_wizard/{action}     previous, next, goto?step=N, restart,
//	                               cancel, complete, start
//	GET  /_wizard/events           WebSocket feed of location changes
//	GET  /healthz                  JSON health and version
//
// Event messages look like:
//
//	{"path":"/1/","stepIndex":1,"maxStepReached":2}
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8080, Advertise: true}, def)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Blocks until SIGINT/SIGTERM
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package server
