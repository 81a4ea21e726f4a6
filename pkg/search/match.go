package search

// Captures holds a regex match's capture groups, keyed by group index.
//
// Memory-conserving storage rule: if the match produced one or more
// numbered groups, only groups 1..N are stored (group 0, the whole match,
// is dropped); if it produced no groups, group 0 is stored. Callers rely on
// Get(0) returning ("", false) whenever real groups exist.
type Captures map[int]string

// Get retrieves capture group i, if present.
func (c Captures) Get(i int) (string, bool) {
	v, ok := c[i]
	return v, ok
}

func newCaptures(line string, p Pattern, loc []int) Captures {
	groups := p.groups(line, loc)
	c := Captures{}
	if len(groups) > 1 {
		for i := 1; i < len(groups); i++ {
			c[i] = groups[i]
		}
	} else {
		c[0] = groups[0]
	}
	return c
}

// Match is one search result: the source file, the 1-based line number it
// was found on, the capture groups, the tag of the term that produced it,
// and, for sequence terms, the sequence id and section index.
type Match struct {
	Source     string
	LineNo     uint64
	Tag        string
	Captures   Captures
	SeqID      string
	SectionOK  bool // true iff SectionIdx is meaningful (sequence match)
	SectionIdx uint32
}
