package routepath

import (
	"errors"
	"fmt"
	"strings"
)

// SegmentKind classifies one segment of a route pattern.
type SegmentKind int

const (
	// Literal matches one URL segment exactly.
	Literal SegmentKind = iota

	// Required is a ":name" parameter that must be present and non-empty.
	Required

	// Optional is a ":name?" parameter that may be absent.
	Optional

	// RestOneOrMore is a ":name+" capture of at least one remaining segment.
	RestOneOrMore

	// RestZeroOrMore is a ":name*" capture of any remaining segments.
	RestZeroOrMore
)

// String returns the modifier-style name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Required:
		return "param"
	case Optional:
		return "optional"
	case RestOneOrMore:
		return "rest+"
	case RestZeroOrMore:
		return "rest*"
	default:
		return "unknown"
	}
}

// IsRest reports whether the kind consumes the remainder of the path.
func (k SegmentKind) IsRest() bool {
	return k == RestOneOrMore || k == RestZeroOrMore
}

// Segment is a parsed pattern segment.
type Segment struct {
	Kind SegmentKind

	// Name is the parameter name for non-literal segments.
	Name string

	// Literal is the raw text for literal segments.
	Literal string
}

// ErrInvalidPattern is returned by ParsePattern for malformed patterns.
var ErrInvalidPattern = errors.New("invalid route pattern")

// Split splits a path or pattern on "/", dropping leading and trailing
// empty segments so "/a/" and "a" segment identically. The root path
// yields no segments.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// ParseSegment classifies one pattern segment.
func ParseSegment(seg string) Segment {
	if !strings.HasPrefix(seg, ":") {
		return Segment{Kind: Literal, Literal: seg}
	}
	name := seg[1:]
	kind := Required
	if n := len(name); n > 0 {
		switch name[n-1] {
		case '?':
			kind, name = Optional, name[:n-1]
		case '+':
			kind, name = RestOneOrMore, name[:n-1]
		case '*':
			kind, name = RestZeroOrMore, name[:n-1]
		}
	}
	return Segment{Kind: kind, Name: name}
}

// ParsePattern parses every segment of a pattern.
// Parsing never fails for matching purposes; ValidatePattern reports
// patterns that can never bind a usable parameter.
func ParsePattern(pattern string) []Segment {
	parts := Split(pattern)
	segs := make([]Segment, len(parts))
	for i, p := range parts {
		segs[i] = ParseSegment(p)
	}
	return segs
}

// ValidatePattern rejects patterns with unnamed parameters or duplicate
// parameter names. Segments after a rest capture are allowed; they are
// never reached during matching.
func ValidatePattern(pattern string) error {
	seen := make(map[string]bool)
	for i, seg := range ParsePattern(pattern) {
		if seg.Kind == Literal {
			continue
		}
		if seg.Name == "" {
			return fmt.Errorf("%w: %q segment %d has no parameter name", ErrInvalidPattern, pattern, i)
		}
		if strings.ContainsAny(seg.Name, ":?*+") {
			return fmt.Errorf("%w: %q parameter %q has a misplaced modifier", ErrInvalidPattern, pattern, seg.Name)
		}
		if seen[seg.Name] {
			return fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidPattern, pattern, seg.Name)
		}
		seen[seg.Name] = true
	}
	return nil
}
