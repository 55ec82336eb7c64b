// Package dataset loads labeled image datasets from CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names). Files ending in .gz
// or .zst are decompressed transparently.
func LoadCSV(path string) ([]Row, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	reader := csv.NewReader(rc)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	headers := append([]string(nil), header...)

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: parse %s: %w", path, err)
		}
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", line, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[strings.TrimSpace(h)] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// LoadCSVRange reads rows in the given range [start, end] (1-based, inclusive).
// Row 1 is the first data row (after headers).
func LoadCSVRange(path string, start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}

	allRows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	// Clamp end to available rows
	if end > len(allRows) {
		end = len(allRows)
	}

	// If start is beyond available rows, return empty
	if start > len(allRows) {
		return []Row{}, nil
	}

	return allRows[start-1 : end], nil
}

// open returns a reader for path, decompressing by file extension.
func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("csv: gzip %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("csv: zstd %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	default:
		return f, nil
	}
}

// stackedCloser closes a decompressor before the file underneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
