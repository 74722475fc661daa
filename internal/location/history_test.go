package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Path
	}
	return out
}

func TestHistoryPushBackForward(t *testing.T) {
	h := NewHistory("/")

	h.Push("/0/")
	h.Push("/1/")
	h.Push("/2/")
	assert.Equal(t, "/2/", h.Current().Path)
	assert.Equal(t, 4, h.Len())

	require.True(t, h.Back())
	require.True(t, h.Back())
	assert.Equal(t, "/0/", h.Current().Path)
	assert.True(t, h.CanGoForward())

	require.True(t, h.Forward())
	assert.Equal(t, "/1/", h.Current().Path)

	// Pushing discards the forward entries
	h.Push("/5/")
	assert.False(t, h.CanGoForward())
	assert.Equal(t, []string{"/", "/0/", "/1/", "/5/"}, paths(h.Entries()))
}

func TestHistoryBackAtStart(t *testing.T) {
	h := NewHistory("")
	assert.Equal(t, "/", h.Current().Path)
	assert.False(t, h.Back())
	assert.False(t, h.Forward())
}

func TestHistoryPushSamePathNotifies(t *testing.T) {
	h := NewHistory("/0/")
	var seen []string
	h.Observe(func(l Location) { seen = append(seen, l.Path) })

	h.Push("/0/")
	assert.Equal(t, []string{"/0/"}, seen)
	assert.Equal(t, 2, h.Len())
}

func TestHistoryObserveOrderAndCancel(t *testing.T) {
	h := NewHistory("/")
	var calls []string

	stopA := h.Observe(func(l Location) { calls = append(calls, "a"+l.Path) })
	h.Observe(func(l Location) { calls = append(calls, "b"+l.Path) })

	h.Push("/1/")
	stopA()
	stopA()
	h.Back()

	assert.Equal(t, []string{"a/1/", "b/1/", "b/"}, calls)
}

func TestHistoryObserverMayPush(t *testing.T) {
	h := NewHistory("/")
	h.Observe(func(l Location) {
		if l.Path == "/redirect/" {
			h.Replace("/target/")
		}
	})

	h.Push("/redirect/")
	assert.Equal(t, "/target/", h.Current().Path)
}

func TestHistoryVisit(t *testing.T) {
	h := NewHistory("/")
	h.Push("/0/")
	h.Push("/1/")

	// Browser back button
	h.Visit("/0/")
	assert.Equal(t, "/0/", h.Current().Path)
	assert.True(t, h.CanGoForward())

	// Browser forward button
	h.Visit("/1/")
	assert.Equal(t, "/1/", h.Current().Path)

	// Typed URL
	h.Visit("/7/")
	assert.Equal(t, []string{"/", "/0/", "/1/", "/7/"}, paths(h.Entries()))
}

func TestHistoryParam(t *testing.T) {
	h := NewHistory("/", StepRoute("/signup/"))

	_, ok := h.Param(StepIndexParam)
	assert.False(t, ok)

	h.Push("/signup/3/")
	v, ok := h.Param(StepIndexParam)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	h.AddRoute(MustCompile("/other/:stepIndex/"))
	h.Push("/other/9/")
	v, _ = h.Param(StepIndexParam)
	assert.Equal(t, "9", v)
}

func TestHistoryAddRouteIgnoresDuplicates(t *testing.T) {
	h := NewHistory("/", StepRoute("/"))

	for i := 0; i < 200; i++ {
		h.AddRoute(StepRoute("/"))
	}
	h.AddRoute(StepRoute("/setup/"))

	require.Len(t, h.routes, 2)
	assert.Equal(t, "/:stepIndex/", h.routes[0].String())
	assert.Equal(t, "/setup/:stepIndex/", h.routes[1].String())

	h.Push("/4/")
	v, ok := h.Param(StepIndexParam)
	assert.True(t, ok)
	assert.Equal(t, "4", v)
}
