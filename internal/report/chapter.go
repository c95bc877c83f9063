package report

import (
	"fmt"
	"regexp"
	"strings"
)

// Chapter is one titled section of a compiled report. The title doubles as
// the navigation anchor, so it must be unique within a report; the compiler
// normalizes collisions before rendering.
type Chapter struct {
	Title string
	Body  string
}

// Reporter produces one chapter at report-build time. Implementations run
// synchronously on the compiler's goroutine and must not block indefinitely.
type Reporter interface {
	ProduceChapter() (Chapter, error)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func() (Chapter, error)

// ProduceChapter calls f.
func (f ReporterFunc) ProduceChapter() (Chapter, error) { return f() }

// Filter transforms a chapter before rendering, typically to redact
// sensitive content. Filters are applied in the order they were added.
type Filter interface {
	Apply(Chapter) Chapter
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(Chapter) Chapter

// Apply calls f.
func (f FilterFunc) Apply(ch Chapter) Chapter { return f(ch) }

// RedactFilter blanks out every match of its patterns in a chapter body.
type RedactFilter struct {
	patterns []*regexp.Regexp
}

// Replacement is the text substituted for redacted matches.
const Replacement = "[redacted]"

// NewRedactFilter compiles the given regular expressions into a filter.
func NewRedactFilter(patterns ...string) (*RedactFilter, error) {
	f := &RedactFilter{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling redact pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Apply replaces all pattern matches in the chapter body.
func (f *RedactFilter) Apply(ch Chapter) Chapter {
	for _, re := range f.patterns {
		ch.Body = re.ReplaceAllString(ch.Body, Replacement)
	}
	return ch
}

// anchor converts a chapter title to a stable fragment identifier.
func anchor(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '(', r == ')':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
