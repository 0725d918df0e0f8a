package metadata

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

// Column sets are stable and kind-specific. The modern kind carries the
// extra file_link_id (ContentDocumentId) column.
var (
	legacyColumns = []string{
		"object_type", "record_id", "record_name",
		"file_id", "file_name", "file_extension", "file_source",
		"local_path", "content_hash", "byte_count", "error",
	}
	fileColumns = []string{
		"object_type", "record_id", "record_name",
		"file_id", "file_link_id", "file_name", "file_extension", "file_source",
		"local_path", "content_hash", "byte_count", "error",
	}
	linkColumns = []string{"content_id", "linked_entity_id", "share_type", "visibility"}
)

// Row is one recorded outcome as written to a per-kind metadata CSV.
type Row struct {
	ObjectType    string
	RecordID      string
	RecordName    string
	FileID        string
	FileLinkID    string
	FileName      string
	FileExtension string
	FileSource    entity.FileSource
	LocalPath     string
	ContentHash   string
	ByteCount     int64
	Error         string
}

// Result reports what a Write recorded.
type Result struct {
	Count      int
	TotalBytes int64
}

// Writer records download outcomes and link associations as CSV files.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a writer on the given filesystem.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Write records one outcome row and one link row per input, in processing
// order, without deduplication. Both files are always created, header-only
// when the inputs are empty, so downstream tooling can rely on their
// existence. Returns the outcome count and the total bytes downloaded.
func (w *Writer) Write(kind entity.FileSource, outcomes []entity.DownloadOutcome, links []entity.LinkAssociation, metaPath, linksPath string) (Result, error) {
	res, err := w.writeOutcomes(kind, outcomes, metaPath)
	if err != nil {
		return Result{}, err
	}
	if err := w.writeLinks(links, linksPath); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (w *Writer) writeOutcomes(kind entity.FileSource, outcomes []entity.DownloadOutcome, path string) (Result, error) {
	columns := legacyColumns
	if kind == entity.SourceFile {
		columns = fileColumns
	}

	cw, f, err := w.create(path, columns)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var res Result
	for _, o := range outcomes {
		record := make([]string, 0, len(columns))
		for _, field := range rowOf(o).fields(columns) {
			record = append(record, normalize(field))
		}
		if err := cw.Write(record); err != nil {
			return Result{}, fmt.Errorf("write row to %s: %w", path, err)
		}
		res.Count++
		res.TotalBytes += o.ByteCount
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return Result{}, fmt.Errorf("flush %s: %w", path, err)
	}
	return res, nil
}

func (w *Writer) writeLinks(links []entity.LinkAssociation, path string) error {
	cw, f, err := w.create(path, linkColumns)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, l := range links {
		record := []string{l.ContentID, l.LinkedEntityID, l.ShareType, l.Visibility}
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

// create opens path for writing and emits the header row.
func (w *Writer) create(path string, columns []string) (*csv.Writer, afero.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	f, err := w.fs.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("write header to %s: %w", path, err)
	}
	return cw, f, nil
}

// rowOf flattens an outcome into a Row.
func rowOf(o entity.DownloadOutcome) Row {
	c := o.Candidate
	return Row{
		ObjectType:    c.ObjectType,
		RecordID:      c.RecordID,
		RecordName:    c.RecordName,
		FileID:        c.FileID,
		FileLinkID:    c.FileLinkID,
		FileName:      c.FileName,
		FileExtension: c.FileExtension,
		FileSource:    c.FileSource,
		LocalPath:     o.LocalPath,
		ContentHash:   o.ContentHash,
		ByteCount:     o.ByteCount,
		Error:         o.Error,
	}
}

// fields renders the row values in column order.
func (r Row) fields(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		switch col {
		case "object_type":
			out = append(out, r.ObjectType)
		case "record_id":
			out = append(out, r.RecordID)
		case "record_name":
			out = append(out, r.RecordName)
		case "file_id":
			out = append(out, r.FileID)
		case "file_link_id":
			out = append(out, r.FileLinkID)
		case "file_name":
			out = append(out, r.FileName)
		case "file_extension":
			out = append(out, r.FileExtension)
		case "file_source":
			out = append(out, string(r.FileSource))
		case "local_path":
			out = append(out, r.LocalPath)
		case "content_hash":
			out = append(out, r.ContentHash)
		case "byte_count":
			out = append(out, strconv.FormatInt(r.ByteCount, 10))
		case "error":
			out = append(out, r.Error)
		}
	}
	return out
}

// normalize folds Windows line endings inside field values.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
