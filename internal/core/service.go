package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/acadflow/acadflow/internal/grid"
	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/presets"
	"github.com/acadflow/acadflow/internal/record"
	"github.com/acadflow/acadflow/internal/store"
	"github.com/acadflow/acadflow/internal/tabular"
)

// ErrUnknownKind is returned for a kind no preset is registered under.
var ErrUnknownKind = errors.New("unknown record kind")

// DeleteAction is the label of the per-row delete action.
const DeleteAction = "Supprimer"

// DefaultImportTimeout bounds one import, parsing and persistence included.
const DefaultImportTimeout = 5 * time.Minute

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	Locale               tabular.Locale
	PageSize             int
	MaxConcurrentImports int
	ImportWait           time.Duration
	ImportTimeout        time.Duration
	AuditCapacity        int
	Now                  func() time.Time
}

// Service ties presets, the grid and the tabular codecs to a store.
type Service struct {
	store         store.Store
	locale        tabular.Locale
	pageSize      int
	importTimeout time.Duration
	limiter       *ImportLimiter
	journal       *AuditLog
	now           func() time.Time
}

// NewService creates a Service over st.
func NewService(st store.Store, opts Options) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if opts.Locale.DecimalSeparator == "" {
		opts.Locale = tabular.DefaultLocale()
	}
	if err := opts.Locale.Validate(); err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	if opts.PageSize < 0 {
		return nil, grid.ErrInvalidPageSize
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:         st,
		locale:        opts.Locale,
		pageSize:      opts.PageSize,
		importTimeout: opts.ImportTimeout,
		limiter:       NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		journal:       NewAuditLog(opts.AuditCapacity, opts.Now),
		now:           opts.Now,
	}, nil
}

// Presets lists the registered presets.
func (s *Service) Presets() []presets.Preset {
	return presets.All()
}

// Preset returns the preset of kind.
func (s *Service) Preset(kind string) (presets.Preset, error) {
	p, ok := presets.Get(kind)
	if !ok {
		return presets.Preset{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return p, nil
}

// Locale returns the locale used for parsing and formatting.
func (s *Service) Locale() tabular.Locale { return s.locale }

// Grid loads the records of kind and returns a grid with q replayed on it.
func (s *Service) Grid(ctx context.Context, kind string, q Query) (*grid.Grid, error) {
	p, err := s.Preset(kind)
	if err != nil {
		return nil, err
	}
	return s.grid(ctx, p, q, grid.Config{})
}

func (s *Service) grid(ctx context.Context, p presets.Preset, q Query, cfg grid.Config) (*grid.Grid, error) {
	data, err := s.store.List(ctx, p.Kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Kind, err)
	}

	cfg.Filters = p.GridFilters()
	cfg.PageSize = s.pageSize
	if q.PageSize > 0 {
		cfg.PageSize = q.PageSize
	}
	cfg.Importable = true
	cfg.Formatter = func(v any) string { return tabular.FormatValue(v, s.locale) }
	if len(cfg.Actions) == 0 {
		cfg.Actions = []grid.Action{{Label: DeleteAction, Icon: "trash", Variant: "danger"}}
	}

	g, err := grid.New(data, p.GridColumns(), cfg)
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", p.Kind, err)
	}
	q.Apply(g)
	return g, nil
}

// View returns the render-ready grid state of kind under q.
func (s *Service) View(ctx context.Context, kind string, q Query) (grid.View, error) {
	g, err := s.Grid(ctx, kind, q)
	if err != nil {
		return grid.View{}, err
	}
	return g.View(), nil
}

// Export encodes every record of kind surviving q, not only the current
// page, and delivers the file to sink.
func (s *Service) Export(ctx context.Context, kind string, q Query, format tabular.Format, sink tabular.Sink) (tabular.Artifact, error) {
	p, err := s.Preset(kind)
	if err != nil {
		return tabular.Artifact{}, err
	}

	var art tabular.Artifact
	g, err := s.grid(ctx, p, q, grid.Config{
		OnExport: func(rows []record.Record, columns []string) error {
			exporter := tabular.Exporter{Locale: s.locale, Sink: sink, Now: s.now}
			a, err := exporter.Export(ctx, format, rows, columns, p.ExportOptions())
			art = a
			return err
		},
	})
	if err != nil {
		return tabular.Artifact{}, err
	}
	if err := g.Export(); err != nil {
		return tabular.Artifact{}, fmt.Errorf("export %s: %w", kind, err)
	}

	s.journal.Record(ctx, AuditEntry{Action: ActionExport, Kind: kind, File: art.Name, RowsAffected: len(g.Rows())})
	logging.WithFields(ctx, "kind", kind, "file", art.Name).Info("export delivered", "bytes", len(art.Data))
	return art, nil
}

// Template delivers the header-only file of kind.
func (s *Service) Template(ctx context.Context, kind string, format tabular.Format, sink tabular.Sink) (tabular.Artifact, error) {
	p, err := s.Preset(kind)
	if err != nil {
		return tabular.Artifact{}, err
	}
	exporter := tabular.Exporter{Locale: s.locale, Sink: sink, Now: s.now}
	art, err := exporter.Template(ctx, format, p.ExportColumns(), p.ExportOptions())
	if err != nil {
		return tabular.Artifact{}, fmt.Errorf("template %s: %w", kind, err)
	}
	s.journal.Record(ctx, AuditEntry{Action: ActionTemplate, Kind: kind, File: art.Name})
	return art, nil
}

// ImportReport is the outcome of Service.Import.
type ImportReport struct {
	Kind string `json:"kind"`
	File string `json:"file"`
	*tabular.ImportResult
	Inserted int `json:"inserted"`
}

// Import parses one file against the preset of kind and appends the valid
// rows to the store. Rows with errors are reported and skipped. A rejected
// file yields a report whose result Failed, with a nil error.
func (s *Service) Import(ctx context.Context, kind, name string, r io.Reader) (*ImportReport, error) {
	p, err := s.Preset(kind)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	logger := logging.WithFields(ctx, "kind", kind, "file", name)
	start := s.now()

	importer := tabular.Importer{Locale: s.locale, Normalize: p.Normalize}
	result := importer.Import(ctx, tabular.Source{Name: name, Reader: r}, p.Mapping(), p.Validator())
	report := &ImportReport{Kind: kind, File: name, ImportResult: result}

	if result.Failed() {
		logger.Warn("import rejected", "error", result.Errors[0])
		return report, nil
	}

	if len(result.Data) > 0 {
		n, err := s.store.Append(ctx, kind, result.Data)
		if err != nil {
			return report, fmt.Errorf("persist %s: %w", kind, err)
		}
		report.Inserted = n
	}

	s.journal.Record(ctx, AuditEntry{
		Action:       ActionImport,
		Kind:         kind,
		File:         name,
		RowsAffected: report.Inserted,
		ErrorRows:    result.Summary.ErrorRows,
	})
	logger.Info("import completed",
		"total_rows", result.Summary.TotalRows,
		"valid_rows", result.Summary.ValidRows,
		"error_rows", result.Summary.ErrorRows,
		"inserted", report.Inserted,
		"duration", s.now().Sub(start),
	)
	return report, nil
}

// Delete removes one record through the grid's delete action.
func (s *Service) Delete(ctx context.Context, kind, id string) error {
	p, err := s.Preset(kind)
	if err != nil {
		return err
	}

	var deleteErr error
	g, err := s.grid(ctx, p, Query{}, grid.Config{
		Actions: []grid.Action{{
			Label:   DeleteAction,
			Variant: "danger",
			OnClick: func(rec record.Record) {
				deleteErr = s.store.Delete(ctx, kind, id)
			},
		}},
	})
	if err != nil {
		return err
	}

	if err := g.RunAction(DeleteAction, id); err != nil {
		if errors.Is(err, grid.ErrRowNotFound) {
			return fmt.Errorf("%w: %s/%s", store.ErrNotFound, kind, id)
		}
		return err
	}
	if deleteErr != nil {
		return deleteErr
	}

	s.journal.Record(ctx, AuditEntry{Action: ActionRowDelete, Kind: kind, RowKey: id, RowsAffected: 1})
	return nil
}

// Reset deletes every record of kind.
func (s *Service) Reset(ctx context.Context, kind string) error {
	if _, err := s.Preset(kind); err != nil {
		return err
	}
	if err := s.store.Reset(ctx, kind); err != nil {
		return err
	}
	s.journal.Record(ctx, AuditEntry{Action: ActionReset, Kind: kind})
	logging.WithFields(ctx, "kind", kind).Warn("dataset reset")
	return nil
}

// Journal returns up to limit recent operations on kind, newest first.
func (s *Service) Journal(kind string, limit int) []AuditEntry {
	return s.journal.Recent(kind, limit)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
