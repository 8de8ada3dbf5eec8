package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/license-checker/internal/types"
)

// Output formats.
const (
	FormatTSV  = "tsv"
	FormatJSON = "json"
)

// Writer renders records as they are produced.
type Writer interface {
	Write(rec *types.PackageRecord) error
	Close() error
}

// NewWriter returns a Writer for format.
func NewWriter(out io.Writer, format string) (Writer, error) {
	switch format {
	case "", FormatTSV:
		return &tsvWriter{out: out}, nil
	case FormatJSON:
		return &jsonWriter{
			out: out,
			doc: Document{
				RunID:       uuid.New(),
				GeneratedAt: time.Now().UTC(),
				Packages:    []*types.PackageRecord{},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type tsvWriter struct {
	out io.Writer
}

func (w *tsvWriter) Write(rec *types.PackageRecord) error {
	_, err := fmt.Fprintln(w.out, rec.TSV())
	return err
}

func (w *tsvWriter) Close() error { return nil }

// Document is the JSON report.
type Document struct {
	RunID       uuid.UUID              `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Packages    []*types.PackageRecord `json:"packages"`
}

// jsonWriter buffers records and writes one document on Close.
type jsonWriter struct {
	out io.Writer
	doc Document
}

func (w *jsonWriter) Write(rec *types.PackageRecord) error {
	w.doc.Packages = append(w.doc.Packages, rec)
	return nil
}

func (w *jsonWriter) Close() error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
