// Package provider adapts external disclosure data onto the
// ports.DisclosureSource paged-fetch port. The production client lives
// outside this repository; FileSource reads provider export files so the
// pipeline can run against local data and tests.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/ports"
)

// FileSource serves pages from one JSON export file per source type
// (<dir>/senate.json, house.json, insiders.json), each holding an ordered
// array of raw records.
type FileSource struct {
	dir string
}

var _ ports.DisclosureSource = (*FileSource)(nil)

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) FetchPage(ctx context.Context, source disclosure.SourceType, page, pageSize int) ([]ports.RawRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if page < 0 || pageSize <= 0 {
		return nil, fmt.Errorf("invalid page window: page=%d page_size=%d", page, pageSize)
	}

	records, err := s.load(source)
	if err != nil {
		return nil, err
	}

	start := page * pageSize
	if start >= len(records) {
		return []ports.RawRecord{}, nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], nil
}

func (s *FileSource) load(source disclosure.SourceType) ([]ports.RawRecord, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", disclosure.ErrUnknownSourceType, source)
	}

	path := filepath.Join(s.dir, string(source)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read source file %q", path)
	}

	var records []ports.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errs.Wrapf(err, "decode source file %q", path)
	}
	return records, nil
}
