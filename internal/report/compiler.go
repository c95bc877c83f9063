package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triagehq/blackbox/internal/errors"
)

// Compiler orchestrates reporters and filters into one Document.
// Zero value is not usable; create with NewCompiler.
type Compiler struct {
	reporters []Reporter
	filters   []Filter
}

// NewCompiler creates a Compiler over the given reporters, which run in the
// supplied order.
func NewCompiler(reporters ...Reporter) *Compiler {
	return &Compiler{reporters: reporters}
}

// AddReporter appends a reporter to the run order.
func (c *Compiler) AddReporter(r Reporter) {
	c.reporters = append(c.reporters, r)
}

// AddFilter appends a filter. Filters apply to every chapter, in the order
// they were added.
func (c *Compiler) AddFilter(f Filter) {
	c.filters = append(c.filters, f)
}

// Compile runs every reporter, applies the filters, normalizes duplicate
// chapter titles, and renders the final document. Single-pass and
// synchronous: there is no partial or streaming output.
func (c *Compiler) Compile() (*Document, error) {
	if len(c.reporters) == 0 {
		return nil, errors.ErrNoReporters
	}

	chapters := make([]Chapter, 0, len(c.reporters))
	for _, r := range c.reporters {
		ch, err := r.ProduceChapter()
		if err != nil {
			// A failing reporter becomes an error chapter; the rest of
			// the report still renders.
			ch = Chapter{
				Title: fmt.Sprintf("%T", r),
				Body:  fmt.Sprintf("report section failed: %v", err),
			}
		}
		for _, f := range c.filters {
			ch = f.Apply(ch)
		}
		chapters = append(chapters, ch)
	}

	dedupeTitles(chapters)

	html, err := render(chapters)
	if err != nil {
		return nil, errors.Wrap(err, "rendering report")
	}

	return &Document{
		ID:        uuid.NewString(),
		Filename:  DefaultFilename,
		HTML:      html,
		MIMEType:  MIMEType,
		Generated: time.Now(),
	}, nil
}

// dedupeTitles suffixes repeated titles with " (2)", " (3)", ... so every
// navigation anchor stays unambiguous.
func dedupeTitles(chapters []Chapter) {
	seen := make(map[string]int, len(chapters))
	for i := range chapters {
		key := strings.ToLower(chapters[i].Title)
		seen[key]++
		if n := seen[key]; n > 1 {
			chapters[i].Title = fmt.Sprintf("%s (%d)", chapters[i].Title, n)
		}
	}
}

// chapterView is the template-facing shape of a chapter.
type chapterView struct {
	Title  string
	Anchor string
	Body   string
}

// pageTemplate is the fixed report shell: head and style block, navigation
// list of chapter anchors, then the chapter sections in order.
var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Diagnostics Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c1c1e; }
nav ul { list-style: none; padding: 0; }
nav li { display: inline-block; margin-right: 1rem; }
section { margin-top: 2rem; border-top: 1px solid #d1d1d6; }
pre { background: #f2f2f7; padding: 1rem; overflow-x: auto; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Diagnostics Report</h1>
<nav>
<ul>
{{- range . }}
<li><a href="#{{ .Anchor }}">{{ .Title }}</a></li>
{{- end }}
</ul>
</nav>
{{- range . }}
<section id="{{ .Anchor }}">
<h2>{{ .Title }}</h2>
<pre>{{ .Body }}</pre>
</section>
{{- end }}
</body>
</html>
`))

func render(chapters []Chapter) (string, error) {
	views := make([]chapterView, len(chapters))
	for i, ch := range chapters {
		views[i] = chapterView{Title: ch.Title, Anchor: anchor(ch.Title), Body: ch.Body}
	}
	var b strings.Builder
	if err := pageTemplate.Execute(&b, views); err != nil {
		return "", err
	}
	return b.String(), nil
}
