package partition

import (
	"fmt"
	"testing"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

func makeRows(n int) []entity.CandidateRecord {
	rows := make([]entity.CandidateRecord, n)
	for i := range rows {
		rows[i] = entity.CandidateRecord{FileID: fmt.Sprintf("068%09d", i)}
	}
	return rows
}

func TestSelectDisjointCover(t *testing.T) {
	for _, total := range []int{1, 2, 3, 7} {
		for _, n := range []int{0, 1, 10, 23} {
			rows := makeRows(n)

			seen := make(map[string]int)
			selected := 0
			for index := 1; index <= total; index++ {
				chunk := New(total, index).Select(rows)
				selected += len(chunk)
				for _, r := range chunk {
					seen[r.FileID]++
				}
			}

			if selected != n {
				t.Errorf("total=%d n=%d: chunks cover %d rows, want %d", total, n, selected, n)
			}
			for id, count := range seen {
				if count != 1 {
					t.Errorf("total=%d n=%d: row %s selected %d times", total, n, id, count)
				}
			}
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	rows := makeRows(17)
	spec := New(4, 2)

	first := spec.Select(rows)
	second := spec.Select(rows)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].FileID != second[i].FileID {
			t.Errorf("row %d differs: %s vs %s", i, first[i].FileID, second[i].FileID)
		}
	}
}

func TestSelectModuloAssignment(t *testing.T) {
	rows := makeRows(10)

	// Chunk 1 of 3 gets positions 0, 3, 6, 9.
	got := New(3, 1).Select(rows)
	want := []int{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, p := range want {
		if got[i].FileID != rows[p].FileID {
			t.Errorf("row %d: got %s, want %s", i, got[i].FileID, rows[p].FileID)
		}
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		total, index int
	}{
		{0, 1},
		{-1, 1},
		{3, 0},
		{3, 4},
		{3, -2},
	}
	for _, tt := range tests {
		if spec := New(tt.total, tt.index); spec.Active() {
			t.Errorf("New(%d, %d) is active, want inactive", tt.total, tt.index)
		}
	}
	if !New(1, 1).Active() {
		t.Error("New(1, 1) is inactive, want active")
	}
}

func TestInactiveSelectsAll(t *testing.T) {
	rows := makeRows(5)
	got := Spec{}.Select(rows)
	if len(got) != len(rows) {
		t.Fatalf("inactive spec selected %d rows, want %d", len(got), len(rows))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		total, idx string
		active     bool
		wantTotal  int
		wantIndex  int
	}{
		{name: "empty total disables", total: "", idx: "2", active: false},
		{name: "valid", total: "4", idx: "3", active: true, wantTotal: 4, wantIndex: 3},
		{name: "empty index defaults to 1", total: "4", idx: "", active: true, wantTotal: 4, wantIndex: 1},
		{name: "non-numeric total disables", total: "four", idx: "1", active: false},
		{name: "non-numeric index disables", total: "4", idx: "one", active: false},
		{name: "index out of range disables", total: "4", idx: "5", active: false},
		{name: "zero total disables", total: "0", idx: "1", active: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Parse(tt.total, tt.idx, nil)
			if spec.Active() != tt.active {
				t.Fatalf("active = %v, want %v", spec.Active(), tt.active)
			}
			if tt.active {
				if spec.Total() != tt.wantTotal || spec.Index() != tt.wantIndex {
					t.Errorf("got (%d, %d), want (%d, %d)",
						spec.Total(), spec.Index(), tt.wantTotal, tt.wantIndex)
				}
			}
		})
	}
}
