package tabular

import "errors"

var (
	ErrNoRecords         = errors.New("no records to export")
	ErrNoColumns         = errors.New("no columns to export")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
