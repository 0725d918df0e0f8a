package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

// ReadOutcomes loads a recorded metadata CSV back into rows. Both kind
// layouts are accepted; columns are resolved by header name.
func ReadOutcomes(fs afero.Fs, path string) ([]Row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
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

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		byteCount, _ := strconv.ParseInt(field(record, "byte_count"), 10, 64)
		rows = append(rows, Row{
			ObjectType:    field(record, "object_type"),
			RecordID:      field(record, "record_id"),
			RecordName:    field(record, "record_name"),
			FileID:        field(record, "file_id"),
			FileLinkID:    field(record, "file_link_id"),
			FileName:      field(record, "file_name"),
			FileExtension: field(record, "file_extension"),
			FileSource:    entity.FileSource(field(record, "file_source")),
			LocalPath:     field(record, "local_path"),
			ContentHash:   field(record, "content_hash"),
			ByteCount:     byteCount,
			Error:         field(record, "error"),
		})
	}
	return rows, nil
}

// WriteRows writes already-flattened rows using the full column set. Used by
// the auditor for its failed-detail table.
func WriteRows(fs afero.Fs, path string, rows []Row) error {
	w := NewWriter(fs)
	cw, f, err := w.create(path, fileColumns)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, r := range rows {
		record := r.fields(fileColumns)
		for i := range record {
			record[i] = normalize(record[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
