// Package audit derives failure evidence from recorded download metadata.
//
// The audit is a pure function of its input and safe to re-run: it never
// mutates the source metadata. Failures are grouped by the 3-character
// record-id prefix, which discriminates the parent object type by Salesforce
// convention, so one object type being universally denied shows up as a
// single dominant bucket while scattered transient errors spread thin.
package audit

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/ksteptoe/sfdump-sub001/internal/metadata"
)

// Summary is one row of the failed-download summary.
type Summary struct {
	ParentObjectPrefix string
	ObjectType         string
	FailedCount        int
}

// Run splits recorded metadata rows into the failed detail subset and a
// per-prefix summary sorted by prefix. prefixes maps record-id prefixes to
// object type names and may be nil; unknown prefixes resolve to "". Rows
// whose parent id is absent or shorter than three characters land in the
// empty-prefix bucket.
func Run(rows []metadata.Row, prefixes map[string]string) (failed []metadata.Row, summary []Summary) {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Error == "" {
			continue
		}
		failed = append(failed, r)
		counts[prefixOf(r.RecordID)]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary = make([]Summary, 0, len(keys))
	for _, k := range keys {
		summary = append(summary, Summary{
			ParentObjectPrefix: k,
			ObjectType:         prefixes[k],
			FailedCount:        counts[k],
		})
	}
	return failed, summary
}

// WriteSummary writes summary rows as a CSV table, header always present.
func WriteSummary(fs afero.Fs, path string, summary []Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"parent_object_prefix", "object_type", "failed_count"}); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	for _, s := range summary {
		record := []string{s.ParentObjectPrefix, s.ObjectType, strconv.Itoa(s.FailedCount)}
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

func prefixOf(recordID string) string {
	if len(recordID) < 3 {
		return ""
	}
	return recordID[:3]
}
