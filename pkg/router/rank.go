package router

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/navrouter/pkg/routepath"
)

// Per-segment specificity, most specific first.
const (
	rankLiteral    = 5
	rankRequired   = 4
	rankOptional   = 3
	rankOneOrMore  = 2
	rankZeroOrMore = 1
	rankDefault    = 0
)

// RankKey is a route's specificity: one rank per pattern segment, compared
// left to right.
type RankKey []int

// DefaultRank is the key of default routes. It sorts below every pattern.
var DefaultRank = RankKey{rankDefault}

// Rank computes the specificity key of a pattern. The root pattern ranks as
// a single literal segment.
func Rank(pattern string) RankKey {
	segs := routepath.ParsePattern(pattern)
	if len(segs) == 0 {
		return RankKey{rankLiteral}
	}
	key := make(RankKey, len(segs))
	for i, seg := range segs {
		key[i] = segmentRank(seg.Kind)
	}
	return key
}

func segmentRank(k routepath.SegmentKind) int {
	switch k {
	case routepath.Required:
		return rankRequired
	case routepath.Optional:
		return rankOptional
	case routepath.RestOneOrMore:
		return rankOneOrMore
	case routepath.RestZeroOrMore:
		return rankZeroOrMore
	default:
		return rankLiteral
	}
}

// EntryRank returns DefaultRank for default entries and Rank(e.Pattern)
// otherwise.
func EntryRank(e Entry) RankKey {
	if e.Default {
		return DefaultRank
	}
	return Rank(e.Pattern)
}

// Compare returns -1, 0 or +1 as k ranks below, equal to or above o.
// A key that is a strict prefix of another ranks below it.
func (k RankKey) Compare(o RankKey) int {
	return slices.Compare(k, o)
}

// String renders the key as digits, e.g. "54" for "/users/:id".
func (k RankKey) String() string {
	var b strings.Builder
	for _, r := range k {
		b.WriteString(strconv.Itoa(r))
	}
	return b.String()
}

// OrderRoutes returns entries sorted most specific first. Equal keys keep
// ascending Index order. The input slice is not modified.
func OrderRoutes(entries []Entry) []Entry {
	type ranked struct {
		entry Entry
		key   RankKey
	}
	rs := make([]ranked, len(entries))
	for i, e := range entries {
		rs[i] = ranked{entry: e, key: EntryRank(e)}
	}

	slices.SortStableFunc(rs, func(a, b ranked) int {
		if c := b.key.Compare(a.key); c != 0 {
			return c
		}
		return cmp.Compare(a.entry.Index, b.entry.Index)
	})

	out := make([]Entry, len(rs))
	for i, r := range rs {
		out[i] = r.entry
	}
	return out
}
