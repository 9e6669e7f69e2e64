package location

import (
	"fmt"
	"net/url"
	"sort"
)

// HistoryMode says how an accepted navigation is written to history.
type HistoryMode int

const (
	// ModePush appends a history entry.
	ModePush HistoryMode = iota

	// ModeReplace overwrites the current history entry.
	ModeReplace

	// ModeNone updates the location without touching history.
	ModeNone
)

// String returns the mode name used in logs and wire messages.
func (m HistoryMode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModeReplace:
		return "replace"
	case ModeNone:
		return "none"
	default:
		return fmt.Sprintf("HistoryMode(%d)", int(m))
	}
}

// NavigateOptions configures navigation behavior.
type NavigateOptions struct {
	// Mode is the history write. Defaults to ModePush.
	Mode HistoryMode

	// Params are query parameters to add to the URL.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Mode = ModeReplace
	}
}

// WithoutHistory updates the location without writing history.
func WithoutHistory() NavigateOption {
	return func(o *NavigateOptions) {
		o.Mode = ModeNone
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

func buildOptions(opts []NavigateOption) NavigateOptions {
	options := NavigateOptions{Mode: ModePush}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// BuildURL merges Params into target's query string. Keys are written in
// sorted order so the result is stable.
func (o NavigateOptions) BuildURL(target string) (string, error) {
	if len(o.Params) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid navigation target %q: %w", target, err)
	}

	q := u.Query()
	keys := make([]string, 0, len(o.Params))
	for k := range o.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, fmt.Sprintf("%v", o.Params[k]))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
