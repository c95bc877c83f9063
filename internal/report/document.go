package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/triagehq/blackbox/internal/errors"
)

// DefaultFilename is the conventional name for a saved report.
const DefaultFilename = "Diagnostics-Report.html"

// MIMEType identifies the report payload for transport or attachment.
const MIMEType = "text/html"

// Document is the immutable output artifact of a Compile run. Ownership
// passes to the caller, which decides how to export or dispose of it.
type Document struct {
	ID        string
	Filename  string
	HTML      string
	MIMEType  string
	Generated time.Time
}

// Bytes returns the report content encoded for storage or transport.
func (d *Document) Bytes() []byte {
	return []byte(d.HTML)
}

// Save writes the report into dir under its Filename and returns the full
// path. Persistence is a convenience layered on the document, not part of
// the compile contract.
func (d *Document) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating report directory %s", dir)
	}
	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing report to %s", path)
	}
	return path, nil
}
