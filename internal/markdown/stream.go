package markdown

import "strings"

// CompletedSection is one section detected in the incremental token stream.
// Content carries the "### " heading prefix except for the very first piece
// of a stream, which precedes any heading.
type CompletedSection struct {
	Title   string
	Content string
}

// SectionStream is the stateful splitter behind streaming finalization.
// Tokens are fed in arrival order; a section is completed every time the
// boundary marker fully lands in the buffer. The type is pure and holds
// no I/O, so transports can be swapped without touching it.
type SectionStream struct {
	full    strings.Builder
	buffer  string
	emitted bool
}

func NewSectionStream() *SectionStream {
	return &SectionStream{}
}

// Feed appends one token and returns the sections it completed, in order.
func (s *SectionStream) Feed(token string) []CompletedSection {
	s.full.WriteString(token)
	s.buffer += token

	if !strings.Contains(s.buffer, SectionBoundary) {
		return nil
	}

	pieces := strings.Split(s.buffer, SectionBoundary)
	completed := make([]CompletedSection, 0, len(pieces)-1)
	for _, piece := range pieces[:len(pieces)-1] {
		prefix := "### "
		if !s.emitted {
			prefix = ""
		}
		completed = append(completed, CompletedSection{
			Title:   sectionTitle(piece),
			Content: prefix + piece,
		})
		s.emitted = true
	}
	s.buffer = pieces[len(pieces)-1]
	return completed
}

// Flush returns the trailing, still-buffered section once the stream ends.
// Whitespace-only remainders are dropped.
func (s *SectionStream) Flush() (CompletedSection, bool) {
	if strings.TrimSpace(s.buffer) == "" {
		return CompletedSection{}, false
	}
	section := CompletedSection{
		Title:   sectionTitle(s.buffer),
		Content: "### " + s.buffer,
	}
	s.buffer = ""
	s.emitted = true
	return section, true
}

// Full returns every token seen so far, unmodified.
func (s *SectionStream) Full() string { return s.full.String() }

func sectionTitle(piece string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(piece), "\n")
	return NormalizeKey(firstLine)
}
