package tabular

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acadflow/acadflow/internal/record"
)

// Format is a supported file container.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" and "excel" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DetectFormat chooses the container from a file name extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType is the MIME type of the container.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Artifact is a named downloadable file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink delivers an artifact to wherever the host saves files.
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a Artifact) error

func (f SinkFunc) Deliver(ctx context.Context, a Artifact) error { return f(ctx, a) }

// DirSink writes artifacts into a directory.
type DirSink struct {
	Dir string
}

func (d DirSink) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MemorySink keeps delivered artifacts.
type MemorySink struct {
	mu        sync.Mutex
	Artifacts []Artifact
}

func (m *MemorySink) Deliver(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, a)
	return nil
}

// Last returns the most recent artifact.
func (m *MemorySink) Last() (Artifact, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Artifacts) == 0 {
		return Artifact{}, false
	}
	return m.Artifacts[len(m.Artifacts)-1], true
}

// Exporter encodes records and hands the bytes to a Sink.
type Exporter struct {
	Locale Locale
	Sink   Sink
	// Now dates the file name. Defaults to time.Now.
	Now func() time.Time
}

// FileName returns "<base>_<YYYY-MM-DD>.<ext>".
func (e Exporter) FileName(base string, format Format) string {
	if base == "" {
		base = "export"
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return fmt.Sprintf("%s_%s.%s", base, now().Format("2006-01-02"), format)
}

// Export encodes records in the given format and delivers the artifact.
// Exporting no records fails with ErrNoRecords.
func (e Exporter) Export(ctx context.Context, format Format, records []record.Record, columns []string, opts ExportOptions) (Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = EncodeCSV(records, columns, opts, e.Locale)
	case FormatXLSX:
		data, err = EncodeXLSX(records, columns, opts, e.Locale)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Artifact{}, err
	}
	return e.deliver(ctx, Artifact{
		Name:        e.FileName(opts.Filename, format),
		ContentType: format.ContentType(),
		Data:        data,
	})
}

// Template delivers a header-only file users fill in and import back.
func (e Exporter) Template(ctx context.Context, format Format, columns []string, opts ExportOptions) (Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = headerCSV(columns, opts)
	case FormatXLSX:
		data, err = headerXLSX(columns, opts)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Artifact{}, err
	}

	base := opts.Filename
	if base == "" {
		base = "modele"
	}
	return e.deliver(ctx, Artifact{
		Name:        fmt.Sprintf("%s_modele.%s", base, format),
		ContentType: format.ContentType(),
		Data:        data,
	})
}

func (e Exporter) deliver(ctx context.Context, a Artifact) (Artifact, error) {
	if e.Sink == nil {
		return a, nil
	}
	if err := e.Sink.Deliver(ctx, a); err != nil {
		return Artifact{}, fmt.Errorf("deliver %s: %w", a.Name, err)
	}
	return a, nil
}
