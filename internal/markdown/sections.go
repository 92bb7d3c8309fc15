// Package markdown implements the section-oriented parsing the quote
// pipeline is built on. Section keys derived here are a contract shared
// with the client UI and the PDF renderer: lowercase heading text with
// whitespace runs collapsed to underscores.
package markdown

import (
	"regexp"
	"strings"
)

const (
	// SectionBoundary separates "### " headed blocks in generated content.
	SectionBoundary = "\n### "

	KeyQuoteTitle        = "quote_title"
	KeyClientInformation = "client_information"
	KeyScopeOfWork       = "scope_of_work"
	KeySummary           = "summary"
	KeyProjectTimeline   = "project_timeline"
	KeyQuoteDetails      = "quote_details"
	KeySitePhoto         = "site_photo"
)

// Sections maps normalized heading keys to the raw lines of each section.
// Lookups are optional by design; absent keys are a valid outcome.
type Sections map[string][]string

// Lines returns the section's lines, or nil when the key is absent.
func (s Sections) Lines(key string) []string { return s[key] }

// First returns the first line of a section, or "" when absent/empty.
func (s Sections) First(key string) string {
	lines := s[key]
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func (s Sections) Has(key string) bool { return len(s[key]) > 0 }

var (
	titleLineRe    = regexp.MustCompile(`^#\s*(.*)`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	boldRe         = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe       = regexp.MustCompile(`\*(.*?)\*`)
	linkRe         = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	scopeHeadingRe = regexp.MustCompile(`(?i)###[ \t]*Scope of Work`)
)

// NormalizeKey derives the canonical section key from heading text:
// strip markdown hashes, trim, lowercase, whitespace runs to underscores.
func NormalizeKey(heading string) string {
	key := strings.ReplaceAll(heading, "#", "")
	key = strings.ToLower(strings.TrimSpace(key))
	return whitespaceRe.ReplaceAllString(key, "_")
}

// ParseSections splits a markdown document on "\n### " boundaries into a
// key to raw-lines mapping. Content before the first boundary becomes the
// quote_title / client_information pseudo-sections. The parser is total:
// malformed input yields missing keys, never an error. A later section
// with the same key overwrites an earlier one.
func ParseSections(content string) Sections {
	sections := Sections{}

	for i, block := range strings.Split(content, SectionBoundary) {
		if i == 0 {
			if m := titleLineRe.FindStringSubmatch(block); m != nil {
				sections[KeyQuoteTitle] = []string{m[1]}
				if rest := strings.TrimSpace(block[len(m[0]):]); rest != "" {
					sections[KeyClientInformation] = strings.Split(rest, "\n")
				}
			} else if trimmed := strings.TrimSpace(block); trimmed != "" {
				sections[KeyClientInformation] = strings.Split(trimmed, "\n")
			}
			continue
		}

		lines := strings.Split(block, "\n")
		key := NormalizeKey(lines[0])
		body := make([]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				body = append(body, line)
			}
		}
		sections[key] = body
	}

	return sections
}

// ExtractScope returns the "### Scope of Work" block verbatim, including
// its heading, trimmed. The block runs until the next "###" heading or
// the end of the document. Absence is an expected outcome, not an error.
func ExtractScope(md string) (string, bool) {
	loc := scopeHeadingRe.FindStringIndex(md)
	if loc == nil {
		return "", false
	}
	block := md[loc[0]:]
	if end := strings.Index(block, "\n###"); end >= 0 {
		block = block[:end]
	}
	return strings.TrimSpace(block), true
}

// Sanitize strips bold/italic emphasis and link wrappers while keeping
// the wrapped text, so PDF output never shows raw markdown markers.
func Sanitize(md string) string {
	if md == "" {
		return ""
	}
	out := boldRe.ReplaceAllString(md, "$1")
	out = italicRe.ReplaceAllString(out, "$1")
	return linkRe.ReplaceAllString(out, "$1")
}
