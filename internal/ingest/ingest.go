// Package ingest loads booking rows from one or more files on disk.
//
// Each path is dispatched on its extension: .xlsx goes through the workbook
// reader, anything else through the CSV parser. Several files are parsed
// concurrently and the result is concatenated in argument order, so the
// row pool (and every serial derived from it) does not depend on which file
// finished first.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/types"
	"github.com/nilefleet/genset-invoicer/internal/xlsxbook"
)

// DefaultConcurrency is used when LoadFiles is given a non-positive limit.
const DefaultConcurrency = 4

// LoadFile parses a single booking file.
func LoadFile(path string, opts csvparser.Options) ([]types.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxbook.ReadBookings(path, opts)
	default:
		return csvparser.ParseFile(path, opts)
	}
}

// LoadRecords returns the raw data records of a single booking file.
func LoadRecords(path string) ([]csvparser.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxbook.ReadRecords(path)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		return csvparser.ReadRecords(file)
	}
}

// LoadFiles parses every path with at most limit files in flight and
// returns the rows concatenated in the order the paths were given. The
// first failure cancels the rest.
func LoadFiles(ctx context.Context, paths []string, opts csvparser.Options, limit int, logger *zap.Logger) ([]types.Row, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([][]types.Row, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			rows, err := LoadFile(path, opts)
			if err != nil {
				logger.Error("failed to load booking file",
					zap.String("path", path),
					zap.Error(err),
				)
				return fmt.Errorf("load %s: %w", path, err)
			}

			logger.Debug("loaded booking file",
				zap.String("path", path),
				zap.Int("rows", len(rows)),
			)
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.Row
	for _, rows := range results {
		all = append(all, rows...)
	}

	return all, nil
}
