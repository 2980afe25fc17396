package report

import (
	"fmt"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// ReportRow is one archived outcome. Error is empty for successful pages.
type ReportRow struct {
	Parallelism int64   `parquet:"parallelism"`
	PageSize    uint64  `parquet:"page_size"`
	FromBlock   uint64  `parquet:"from_block"`
	ToBlock     uint64  `parquet:"to_block"`
	LogCount    int64   `parquet:"log_count"`
	ElapsedMs   int64   `parquet:"elapsed_ms"`
	Rate        float64 `parquet:"rate"`
	RateDefined bool    `parquet:"rate_defined"`
	Error       string  `parquet:"error"`
}

func reportRow(r Report, errMsg string) ReportRow {
	return ReportRow{
		Parallelism: int64(r.Parallelism),
		PageSize:    r.PageWidth,
		FromBlock:   r.Page.Start,
		ToBlock:     r.Page.End,
		LogCount:    int64(r.LogCount),
		ElapsedMs:   r.ElapsedMs,
		Rate:        r.Rate,
		RateDefined: r.RateDefined,
		Error:       errMsg,
	}
}

var writerOptions = []parquet.WriterOption{
	parquet.Compression(&parquet.Zstd),
	parquet.DataPageStatistics(true),
}

// ParquetArchive appends report rows to a parquet file. Rows become
// readable once Close has been called.
type ParquetArchive struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *parquet.GenericWriter[ReportRow]
	rows   int
}

func NewParquetArchive(path string) (*ParquetArchive, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}
	return &ParquetArchive{
		path:   path,
		file:   file,
		writer: parquet.NewGenericWriter[ReportRow](file, writerOptions...),
	}, nil
}

func (a *ParquetArchive) Write(row ReportRow) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.writer == nil {
		return fmt.Errorf("parquet archive %s is closed", a.path)
	}
	if _, err := a.writer.Write([]ReportRow{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	a.rows++
	return nil
}

func (a *ParquetArchive) Rows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows
}

func (a *ParquetArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.writer == nil {
		return nil
	}
	writerErr := a.writer.Close()
	a.writer = nil
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	if writerErr != nil {
		return fmt.Errorf("failed to close parquet writer: %w", writerErr)
	}
	return nil
}
