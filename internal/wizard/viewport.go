package wizard

// Viewport is the scroll collaborator. Every step transition resets it to
// the origin.
type Viewport interface {
	ScrollToTop()
}

// ViewportFunc adapts a function to Viewport.
type ViewportFunc func()

// ScrollToTop calls f.
func (f ViewportFunc) ScrollToTop() { f() }

type nopViewport struct{}

func (nopViewport) ScrollToTop() {}

// NopViewport ignores scroll resets.
var NopViewport Viewport = nopViewport{}
