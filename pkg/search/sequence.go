package search

import "github.com/google/uuid"

// Sequence is a multi-line search: start / optional body / optional end,
// sharing one user-visible tag but reporting each part under a derived tag
// ("<tag>-start", "<tag>-body", "<tag>-end"). Sequence is immutable once
// constructed; all scan-time state lives in a seqState created fresh per
// file (see scan.go), so the same registered Sequence is safe to reuse
// concurrently across worker jobs and across repeated Search() calls.
type Sequence struct {
	id    string
	Tag   string
	Start Term
	Body  *Term
	End   *Term
}

// NewSequence builds a Sequence with a fresh globally-unique id.
func NewSequence(tag string, start Term, body, end *Term) Sequence {
	return Sequence{id: uuid.NewString(), Tag: tag, Start: start, Body: body, End: end}
}

// ID returns the sequence's globally-unique, opaque id.
func (s Sequence) ID() string { return s.id }

func (s Sequence) startTag() string { return s.Tag + "-start" }
func (s Sequence) bodyTag() string  { return s.Tag + "-body" }
func (s Sequence) endTag() string   { return s.Tag + "-end" }

// seqState is the per-file, per-sequence scratch state discarded at the end
// of each file scan. It is never shared between jobs: a FileScanner keeps
// one seqState per registered Sequence, created at scan start.
type seqState struct {
	started    bool
	sectionIdx uint32
	buffer     []Match
}

// step advances s's state machine by one line, appending any produced
// records to st.buffer (sequence records are held until EOF, not emitted
// immediately; see eof).
func (s Sequence) step(st *seqState, path string, lineNo uint64, line string) {
	if s.End != nil {
		res := s.Start.run(line)
		if st.started {
			if res.ok() {
				// Restart: discard only the records buffered for the
				// in-progress (not yet committed) section, then
				// re-process this line from idle so it matches start
				// again and opens a fresh attempt at the same index.
				st.buffer = dropSection(st.buffer, st.sectionIdx)
				st.started = false
				s.step(st, path, lineNo, line)
				return
			}
			res = s.End.run(line)
			if res.ok() {
				st.buffer = append(st.buffer, s.newMatch(path, lineNo, s.endTag(), res, st.sectionIdx))
				st.started = false
				st.sectionIdx++
				return
			}
			if s.Body != nil {
				if bres := s.Body.run(line); bres.ok() {
					st.buffer = append(st.buffer, s.newMatch(path, lineNo, s.bodyTag(), bres, st.sectionIdx))
				}
			}
			return
		}
		if res.ok() {
			st.buffer = append(st.buffer, s.newMatch(path, lineNo, s.startTag(), res, st.sectionIdx))
			st.started = true
		}
		return
	}

	// End-less sequence: every start match closes the prior section (if
	// any was open) and opens the next, bumping sectionIdx each time.
	res := s.Start.run(line)
	if res.ok() {
		if st.started {
			st.sectionIdx++
		}
		st.buffer = append(st.buffer, s.newMatch(path, lineNo, s.startTag(), res, st.sectionIdx))
		st.started = true
		return
	}
	if st.started && s.Body != nil {
		if bres := s.Body.run(line); bres.ok() {
			st.buffer = append(st.buffer, s.newMatch(path, lineNo, s.bodyTag(), bres, st.sectionIdx))
		}
	}
}

// eof applies end-of-file handling and returns the sequence's final,
// complete-sections-only record list.
func (s Sequence) eof(st *seqState, path string, lastLineNo uint64) []Match {
	if !st.started {
		return st.buffer
	}
	if s.End == nil {
		st.sectionIdx++
		st.started = false
		return st.buffer
	}
	if res := s.End.run(""); res.ok() {
		st.buffer = append(st.buffer, s.newMatch(path, lastLineNo+1, s.endTag(), res, st.sectionIdx))
		st.started = false
		return st.buffer
	}
	// Incomplete: drop every record buffered for the still-open section.
	st.started = false
	return dropSection(st.buffer, st.sectionIdx)
}

func dropSection(buf []Match, sectionIdx uint32) []Match {
	out := buf[:0]
	for _, m := range buf {
		if m.SectionOK && m.SectionIdx == sectionIdx {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s Sequence) newMatch(path string, lineNo uint64, tag string, r result, sectionIdx uint32) Match {
	return Match{
		Source:     path,
		LineNo:     lineNo,
		Tag:        tag,
		Captures:   captureFromResult(r),
		SeqID:      s.id,
		SectionOK:  true,
		SectionIdx: sectionIdx,
	}
}
