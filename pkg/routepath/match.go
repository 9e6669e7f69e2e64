package routepath

import "strings"

// Params maps parameter names to their decoded values.
type Params map[string]string

// Match matches a URL path against a route pattern in strict mode: every URL
// segment must be accounted for by the pattern or by a rest capture.
// Any query string or hash on urlPath is ignored.
//
// The second result is false when the pattern does not match. A malformed
// percent-escape in a captured segment is reported as no match.
func Match(urlPath, pattern string) (Params, bool) {
	return match(urlPath, pattern, false)
}

// MatchPartial is like Match but accepts URL segments left over after the
// pattern is exhausted, so "/docs" matches "/docs/intro".
func MatchPartial(urlPath, pattern string) (Params, bool) {
	return match(urlPath, pattern, true)
}

func match(urlPath, pattern string, allowPartial bool) (Params, bool) {
	path, _, _ := SplitURL(urlPath)
	urlSegs := Split(path)
	patSegs := ParsePattern(pattern)
	params := make(Params)

	n := max(len(urlSegs), len(patSegs))
	for i := 0; i < n; i++ {
		if i >= len(patSegs) {
			// URL has segments the pattern never mentions.
			if allowPartial {
				break
			}
			return nil, false
		}

		seg := patSegs[i]
		val, present := "", i < len(urlSegs)
		if present {
			val = urlSegs[i]
		}

		switch seg.Kind {
		case Literal:
			if !present || val != seg.Literal {
				return nil, false
			}

		case Required:
			if val == "" {
				return nil, false
			}
			decoded, err := DecodeSegment(val)
			if err != nil {
				return nil, false
			}
			params[seg.Name] = decoded

		case Optional:
			if val == "" {
				continue
			}
			decoded, err := DecodeSegment(val)
			if err != nil {
				return nil, false
			}
			params[seg.Name] = decoded

		case RestOneOrMore, RestZeroOrMore:
			if !present && seg.Kind == RestOneOrMore {
				return nil, false
			}
			rest, ok := decodeRest(urlSegs[min(i, len(urlSegs)):])
			if !ok {
				return nil, false
			}
			if rest == "" && seg.Kind == RestOneOrMore {
				return nil, false
			}
			params[seg.Name] = rest
			return params, true
		}
	}

	return params, true
}

// decodeRest decodes each remaining segment and rejoins them with "/".
func decodeRest(segs []string) (string, bool) {
	decoded := make([]string, len(segs))
	for i, s := range segs {
		d, err := DecodeSegment(s)
		if err != nil {
			return "", false
		}
		decoded[i] = d
	}
	return strings.Join(decoded, "/"), true
}
