// Package partition deterministically splits an ordered candidate set into
// non-overlapping chunks so that multiple processes can export in parallel
// without coordination.
//
// There is no distributed lease: two workers given the same (total, index)
// must be idempotent with respect to each other, and workers with different
// indices must never overlap. Both properties follow from assigning rows to
// chunks purely by position.
//
// Invalid configuration never fails a run. It degrades to "no partitioning",
// trading possible duplicate work for a guaranteed complete export.
package partition

import (
	"log/slog"
	"strconv"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

// Spec selects one chunk of an ordered candidate set. The zero Spec is
// inactive and selects every row.
type Spec struct {
	total  int
	index  int
	active bool
}

// New returns an active Spec when total >= 1 and 1 <= index <= total,
// otherwise an inactive one.
func New(total, index int) Spec {
	if total < 1 || index < 1 || index > total {
		return Spec{}
	}
	return Spec{total: total, index: index, active: true}
}

// Parse builds a Spec from raw configuration strings. An empty total disables
// partitioning. Non-numeric or out-of-range values are logged and disable
// partitioning rather than failing the run. An empty index defaults to 1.
func Parse(totalRaw, indexRaw string, log *slog.Logger) Spec {
	if log == nil {
		log = slog.Default()
	}
	if totalRaw == "" {
		return Spec{}
	}

	total, err := strconv.Atoi(totalRaw)
	if err != nil {
		log.Warn("invalid chunk total, partitioning disabled", "chunk_total", totalRaw)
		return Spec{}
	}

	if indexRaw == "" {
		indexRaw = "1"
	}
	index, err := strconv.Atoi(indexRaw)
	if err != nil {
		log.Warn("invalid chunk index, partitioning disabled", "chunk_index", indexRaw)
		return Spec{}
	}

	spec := New(total, index)
	if !spec.active {
		log.Warn("chunk spec out of range, partitioning disabled",
			"chunk_total", total, "chunk_index", index)
	}
	return spec
}

// Active reports whether the spec selects a strict subset of rows.
func (s Spec) Active() bool { return s.active }

// Total returns the configured number of chunks (0 when inactive).
func (s Spec) Total() int { return s.total }

// Index returns the 1-based chunk index (0 when inactive).
func (s Spec) Index() int { return s.index }

// Select returns the rows belonging to this chunk. Rows are assigned by
// position modulo total: row p belongs to chunk (p mod total)+1. Modulo
// assignment keeps chunks balanced even when upstream ordering clusters rows
// by object type or size. For a fixed input ordering the chunks are disjoint
// and cover the input exactly.
func (s Spec) Select(rows []entity.CandidateRecord) []entity.CandidateRecord {
	if !s.active {
		return rows
	}
	out := make([]entity.CandidateRecord, 0, len(rows)/s.total+1)
	for p, r := range rows {
		if p%s.total+1 == s.index {
			out = append(out, r)
		}
	}
	return out
}
