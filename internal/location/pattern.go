package location

import (
	"fmt"
	"strings"
)

// Pattern is a compiled route such as "/wizard/:stepIndex/".
type Pattern struct {
	route    string
	segments []segment
	// index is the static prefix before the first parameter; a path equal to
	// it matches with every parameter absent.
	index string
}

type segment struct {
	value string
	param bool
}

// Compile parses a route. Routes must be absolute. Parameters are whole
// segments prefixed with ':'.
func Compile(route string) (*Pattern, error) {
	if !strings.HasPrefix(route, "/") {
		return nil, fmt.Errorf("route %q must start with /", route)
	}

	p := &Pattern{route: route}
	parts := strings.Split(route[1:], "/")
	firstParam := -1
	seen := make(map[string]bool)

	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("route %q has an unnamed parameter", route)
			}
			if seen[name] {
				return nil, fmt.Errorf("route %q repeats parameter %q", route, name)
			}
			seen[name] = true
			if firstParam < 0 {
				firstParam = i
			}
			p.segments = append(p.segments, segment{value: name, param: true})
			continue
		}
		p.segments = append(p.segments, segment{value: part})
	}

	if firstParam >= 0 {
		p.index = "/" + strings.Join(parts[:firstParam], "/")
		if firstParam > 0 {
			p.index += "/"
		}
	}

	return p, nil
}

// MustCompile is Compile that panics on an invalid route.
func MustCompile(route string) *Pattern {
	p, err := Compile(route)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source route.
func (p *Pattern) String() string {
	return p.route
}

// Match reports whether path matches the route and returns its parameters.
// The index route matches with an empty parameter map.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}
	if p.index != "" && path == p.index {
		return map[string]string{}, true
	}

	parts := strings.Split(path[1:], "/")
	if len(parts) != len(p.segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range p.segments {
		if seg.param {
			if parts[i] == "" {
				return nil, false
			}
			params[seg.value] = parts[i]
			continue
		}
		if parts[i] != seg.value {
			return nil, false
		}
	}
	return params, true
}

// Param matches path and returns the named parameter.
func (p *Pattern) Param(path string, name string) (string, bool) {
	params, ok := p.Match(path)
	if !ok {
		return "", false
	}
	v, ok := params[name]
	return v, ok
}
