// Package index reads and rewrites the master documents index, the
// externally built consolidated view of which files have been localized.
//
// The index is a flat CSV keyed by file identity. This package only loads it
// and atomically rewrites it after a backfill pass; building it belongs to an
// external aggregation step.
package index

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

var columns = []string{
	"record_id", "object_type", "file_id",
	"file_name", "file_extension", "file_source", "local_path",
}

// Store is a master index backed by one CSV file.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a store for the index at path.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the index file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads all index entries. Column order in the file does not matter;
// fields are resolved by header name.
func (s *Store) Load() ([]entity.MasterIndexEntry, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", s.path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var entries []entity.MasterIndexEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read index %s: %w", s.path, err)
		}
		entries = append(entries, entity.MasterIndexEntry{
			RecordID:      field(record, "record_id"),
			ObjectType:    field(record, "object_type"),
			FileID:        field(record, "file_id"),
			FileName:      field(record, "file_name"),
			FileExtension: field(record, "file_extension"),
			FileSource:    entity.FileSource(field(record, "file_source")),
			LocalPath:     field(record, "local_path"),
		})
	}
	return entries, nil
}

// Save rewrites the index atomically: the new content goes to a temp file
// next to the index which then replaces it, so a crash mid-write never
// leaves a truncated index behind.
func (s *Store) Save(entries []entity.MasterIndexEntry) error {
	tmp := s.path + ".tmp"

	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write index header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.RecordID, e.ObjectType, e.FileID,
			e.FileName, e.FileExtension, string(e.FileSource), e.LocalPath,
		}
		if err := cw.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write index row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace index %s: %w", s.path, err)
	}
	return nil
}
