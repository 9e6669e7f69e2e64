package location

import (
	"net/url"
	"strings"

	"github.com/vango-dev/navrouter/pkg/routepath"
)

// Location is a parsed URL as seen by the router.
type Location struct {
	// URL is the path, query and hash as supplied by the environment.
	URL string

	// Path is the URL path without a trailing slash (except for root "/").
	// It is kept in its percent-encoded form.
	Path string

	// Query maps decoded query keys to decoded values. Later duplicates win.
	Query map[string]string

	// Hash is the fragment including its leading "#". It never contributes
	// to Query.
	Hash string

	// Navigator is the store that published this location. Nested views use
	// it to navigate without holding the store itself. May be nil for
	// locations built with Parse.
	Navigator Navigator
}

// Navigator changes the current location.
type Navigator interface {
	// Navigate moves to url. History is pushed unless an option says
	// otherwise.
	Navigate(url string, opts ...NavigateOption)

	// Resync re-reads the environment's current URL without writing history.
	Resync()
}

// Parse decomposes rawURL into a Location. Relative references are resolved
// against origin; absolute URLs are reduced to their path, query and hash.
func Parse(rawURL, origin string) Location {
	rel := Relative(rawURL, origin)
	path, query, hash := routepath.SplitURL(rel)

	return Location{
		URL:   rawURL,
		Path:  routepath.TrimTrailingSlash(path),
		Query: ParseQuery(query),
		Hash:  hash,
	}
}

// Relative resolves rawURL against origin and returns the path, query and
// hash. Input that net/url cannot parse (for example a malformed
// percent-escape) is returned with a leading "/" ensured, so that matching
// can reject it later instead of parsing failing here.
func Relative(rawURL, origin string) string {
	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err == nil {
		if u, err := base.Parse(rawURL); err == nil {
			return relativeOf(u)
		}
	}
	if !strings.HasPrefix(rawURL, "/") {
		return "/" + rawURL
	}
	return rawURL
}

// relativeOf renders the origin-relative part of u.
func relativeOf(u *url.URL) string {
	var b strings.Builder
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	b.WriteString(path)
	if u.RawQuery != "" || u.ForceQuery {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String()
}

// originOf returns scheme://host in lower case, or "" for URLs without a host.
func originOf(u *url.URL) string {
	if u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// SameOrigin reports whether href, resolved against origin, stays on origin.
// It returns the origin-relative destination when it does.
func SameOrigin(href, origin string) (string, bool) {
	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err != nil || originOf(base) == "" {
		return "", false
	}
	u, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if originOf(u) != originOf(base) {
		return "", false
	}
	return relativeOf(u), true
}

// ParseQuery decodes a raw query string (without "?"). Pairs split on "&",
// keys and values on the first "="; a pair without "=" has the empty value.
// "+" decodes to a space. A component with a malformed escape is kept as is.
func ParseQuery(raw string) map[string]string {
	query := make(map[string]string)
	if raw == "" {
		return query
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		query[unescapeQuery(key)] = unescapeQuery(value)
	}
	return query
}

func unescapeQuery(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}
