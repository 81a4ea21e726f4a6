package search

// Term is a single-line search: an ordered, non-empty list of patterns
// tried in turn, an optional tag, and an optional hint used as a fast
// substring prefilter before the real patterns run.
type Term struct {
	Patterns []Pattern
	Tag      string
	Hint     Pattern // Hint.Valid() == false means "no hint"
}

// NewTerm builds a Term from one or more patterns tried in order.
func NewTerm(tag string, patterns ...Pattern) Term {
	return Term{Patterns: patterns, Tag: tag}
}

// WithHint returns a copy of t with hint set as its prefilter.
func (t Term) WithHint(hint Pattern) Term {
	t.Hint = hint
	return t
}

// result is the outcome of running a Term or a Sequence's start/body/end
// sub-term against one line.
type result struct {
	pattern Pattern
	loc     []int
	line    string
}

func (r result) ok() bool { return r.loc != nil }

// run executes t against line: if Hint is set, Hint.search(line) must
// succeed first (fast reject); then each pattern is tried in order with
// anchored-at-start semantics, and the first hit wins.
func (t Term) run(line string) result {
	if t.Hint.Valid() {
		if t.Hint.search(line) == nil {
			return result{}
		}
	}
	for _, p := range t.Patterns {
		if loc := p.matchStart(line); loc != nil {
			return result{pattern: p, loc: loc, line: line}
		}
	}
	return result{}
}

// captureFromResult builds the Captures for a matched result, applying the
// drop-group-0-when-groups-exist rule.
func captureFromResult(r result) Captures {
	if !r.ok() {
		return nil
	}
	return newCaptures(r.line, r.pattern, r.loc)
}
