package server

import (
	"bufio"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/config"
	"github.com/muurk/stepwise/internal/logging"
	"github.com/muurk/stepwise/internal/version"
	"github.com/muurk/stepwise/internal/wizard"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler returns the server's routes wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /_wizard/events", s.handleEvents)
	mux.HandleFunc("/_wizard/{action}", s.handleAction)
	mux.HandleFunc("/", s.handlePage)
	return s.logRequests(mux)
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.requests.Inc()
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}

// lookupSession returns the session named by the request cookie, if any
func (s *Server) lookupSession(r *http.Request) *session {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	return s.lookupSessionByID(c.Value)
}

// lookupSessionByID returns the session and marks it used. The touch happens
// under s.mu so the sweeper cannot evict a session a request just found.
func (s *Server) lookupSessionByID(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	if sess != nil {
		sess.touch(time.Now())
	}
	return sess
}

// sessionFor returns the request's session, creating and mounting a new one
// at entry when the browser has none. created reports a fresh mount, whose
// initial redirect the caller must follow.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request, entry string) (sess *session, created bool, err error) {
	if sess := s.lookupSession(r); sess != nil {
		return sess, false, nil
	}

	sess = newSession(uuid.NewString(), s.def, entry)
	sess.mu.Lock()
	err = sess.mount(s.ctx)
	sess.mu.Unlock()
	if err != nil {
		return nil, false, err
	}

	s.addSession(sess)
	s.sessionsCreated.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logging.LogConnection(r.RemoteAddr, "session_created")
	return sess, true, nil
}

// handlePage serves step and terminal locations. The request path is fed to
// the session history the way a browser address bar would, and whatever the
// wizard makes of it is rendered.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	if _, isStep := s.stepRoute.Match(path); !isStep && !s.wizardCfg.IsTerminal(path) {
		http.NotFound(w, r)
		return
	}

	sess, created, err := s.sessionFor(w, r, path)
	if err != nil {
		logging.Error("Failed to create session", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !created && sess.history.Current().Path != path {
		sess.history.Visit(path)
	}
	if cur := sess.history.Current().Path; cur != path {
		http.Redirect(w, r, cur, http.StatusSeeOther)
		return
	}

	s.render(w, sess)
}

// handleAction runs a navigation trigger and redirects to wherever it
// pushed the session's location
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, created, err := s.sessionFor(w, r, s.wizardCfg.BasePath)
	if err != nil {
		logging.Error("Failed to create session", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !created {
		wz := sess.wizard
		switch action := r.PathValue("action"); action {
		case "start":
			err = sess.mount(s.ctx)
		case "previous":
			_, err = wz.Previous()
		case "next":
			_, err = wz.Next()
		case "restart":
			_, err = wz.Restart()
		case "cancel":
			_, err = wz.Cancel()
		case "complete":
			_, err = wz.Complete()
		case "goto":
			i, convErr := strconv.Atoi(r.FormValue("step"))
			if convErr != nil {
				http.Error(w, fmt.Sprintf("invalid step %q", r.FormValue("step")), http.StatusBadRequest)
				return
			}
			_, err = wz.GoTo(i)
		default:
			http.NotFound(w, r)
			return
		}
	}

	if err != nil {
		logging.Warn("Navigation trigger failed", zap.String("session", sess.id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	http.Redirect(w, r, sess.history.Current().Path, http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Status   string       `json:"status"`
		Version  version.Info `json:"version"`
		Sessions int          `json:"sessions"`
		Created  int64        `json:"sessions_created"`
		Evicted  int64        `json:"sessions_evicted"`
		Streams  int          `json:"streams"`
		Requests int64        `json:"requests"`
	}{
		Status:   "ok",
		Version:  version.Get(),
		Sessions: s.GetActiveSessions(),
		Created:  s.sessionsCreated.Load(),
		Evicted:  s.sessionsEvicted.Load(),
		Streams:  s.GetActiveConnections(),
		Requests: s.requests.Load(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to write health response", zap.Error(err))
	}
}

// stepLink is one entry of the progress list
type stepLink struct {
	Number    int
	Index     int
	Title     string
	Path      string
	Active    bool
	Reachable bool
}

type pageData struct {
	Wizard   string
	Path     string
	Snapshot wizard.Snapshot
	Steps    []stepLink
	Step     config.Step
	Outcome  string
	Missing  bool
	// Number is the 1-based step number shown to readers
	Number int
}

// render writes the page for the session's current location. Callers
// hold sess.mu.
func (s *Server) render(w http.ResponseWriter, sess *session) {
	snap := sess.wizard.Snapshot()
	data := pageData{
		Wizard:   s.def.Name,
		Path:     sess.history.Current().Path,
		Snapshot: snap,
		Steps:    make([]stepLink, len(s.def.Steps)),
		Number:   snap.StepIndex + 1,
	}
	for i, step := range s.def.Steps {
		data.Steps[i] = stepLink{
			Number:    i + 1,
			Index:     i,
			Title:     step.Title,
			Path:      snap.Config.StepPath(i),
			Active:    i == snap.StepIndex,
			Reachable: snap.CanVisit(i),
		}
	}

	name := "step.html"
	if step, ok := sess.wizard.Active(); ok {
		data.Step = step
	} else if snap.Config.IsTerminal(data.Path) {
		name = "terminal.html"
		data.Outcome = s.outcome(sess, data.Path)
	} else {
		data.Missing = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("Failed to render page", zap.String("template", name), zap.Error(err))
	}
}

// outcome names the terminal location. When both outcomes share a path the
// last event decides.
func (s *Server) outcome(sess *session, path string) string {
	if s.wizardCfg.CancelledPath == s.wizardCfg.CompletedPath {
		if sess.lastEvent != nil && sess.lastEvent.Kind == wizard.EventComplete {
			return "completed"
		}
		return "cancelled"
	}
	if path == s.wizardCfg.CompletedPath {
		return "completed"
	}
	return "cancelled"
}
