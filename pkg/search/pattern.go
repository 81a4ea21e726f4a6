package search

import (
	"bytes"
	"regexp"
	"regexp/syntax"
)

// Pattern is an immutable compiled regex plus its original source string.
// It has no lifecycle beyond the term that owns it.
type Pattern struct {
	re     *regexp.Regexp
	source string

	// literal is a substring guaranteed to appear in any match of re. It is
	// used as a cheap bytes.Contains prefilter so the (comparatively
	// expensive) regexp engine is only invoked on lines that can possibly
	// match. Empty if no useful literal could be derived.
	literal []byte
}

// NewPattern compiles expr and derives its literal-substring prefilter.
//
// Deriving the prefilter reuses the longest-literal-substring technique
// used elsewhere to prune whole files before running a regexp engine;
// here it prunes individual lines instead.
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, &RegexError{Source: expr, Cause: err}
	}

	var literal []byte
	if pre, _ := re.LiteralPrefix(); pre != "" {
		literal = []byte(pre)
	} else if ast, err := syntax.Parse(expr, syntax.Perl); err == nil {
		literal = []byte(longestLiteral(ast.Simplify()))
	}

	return Pattern{re: re, source: expr, literal: literal}, nil
}

// MustPattern is like NewPattern but panics on error. Useful for
// package-level pattern tables in tests and callers that already validated
// expr.
func MustPattern(expr string) Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern's original source expression.
func (p Pattern) String() string { return p.source }

// Valid reports whether p was constructed via NewPattern/MustPattern and
// carries a compiled regexp.
func (p Pattern) Valid() bool { return p.re != nil }

// search runs an unanchored substring search, matching python's re.search.
func (p Pattern) search(line string) []int {
	if len(p.literal) > 0 && !bytes.Contains([]byte(line), p.literal) {
		return nil
	}
	return p.re.FindStringSubmatchIndex(line)
}

// matchStart runs an anchored-at-start match, matching python's re.match:
// the match must begin at index 0 but need not consume the whole line.
func (p Pattern) matchStart(line string) []int {
	if len(p.literal) > 0 && !bytes.Contains([]byte(line), p.literal) {
		return nil
	}
	loc := p.re.FindStringSubmatchIndex(line)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	return loc
}

// groups turns a FindStringSubmatchIndex result into the text of each
// capture group (group 0 included), matching a compiled regexp.Regexp's
// notion of "result.group(i)" in the python original.
func (p Pattern) groups(line string, loc []int) []string {
	n := len(loc) / 2
	out := make([]string, n)
	for i := 0; i < n; i++ {
		s, e := loc[2*i], loc[2*i+1]
		if s < 0 || e < 0 {
			continue
		}
		out[i] = line[s:e]
	}
	return out
}

// longestLiteral finds the longest substring guaranteed to appear in any
// match of re. Adapted from cmd/searcher/search/matcher.go's function of
// the same name; trimmed to the operators our line patterns actually use.
//
// Note: there may be a longer substring that is guaranteed to appear, e.g.
// we do not find the longest common substring across an alternation, nor
// do we concatenate simple capturing groups.
func longestLiteral(re *syntax.Regexp) string {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			// A case-insensitive literal has no single byte form that
			// every match contains.
			return ""
		}
		return string(re.Rune)
	case syntax.OpCapture, syntax.OpPlus:
		return longestLiteral(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min >= 1 {
			return longestLiteral(re.Sub[0])
		}
	case syntax.OpConcat:
		longest := ""
		for _, sub := range re.Sub {
			l := longestLiteral(sub)
			if len(l) > len(longest) {
				longest = l
			}
		}
		return longest
	}
	return ""
}
