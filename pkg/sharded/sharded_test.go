package sharded

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"Q1/Q2 Report", "Q1_Q2_Report"},
		{`a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"  spaces   everywhere  ", "spaces_everywhere"},
		{"tab\there", "tab_here"},
		{"___", "file"},
		{"", "file"},
		{"///", "file"},
		{"_leading_trailing_", "leading_trailing"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		id, fn  string
		ext     string
		want    string
	}{
		{name: "basic", id: "068A", fn: "Report", ext: "pdf", want: "068A_Report.pdf"},
		{name: "extension lowercased", id: "068A", fn: "Report", ext: "PDF", want: "068A_Report.pdf"},
		{name: "dotted extension", id: "068A", fn: "Report", ext: ".pdf", want: "068A_Report.pdf"},
		{name: "no extension", id: "068A", fn: "Report", ext: "", want: "068A_Report"},
		{name: "unsafe name", id: "00P0", fn: "Q1/Q2 plan", ext: "xlsx", want: "00P0_Q1_Q2_plan.xlsx"},
		{name: "empty name", id: "00P0", fn: "", ext: "txt", want: "00P0_file.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.id, tt.fn, tt.ext); got != tt.want {
				t.Errorf("Filename(%q, %q, %q) = %q, want %q", tt.id, tt.fn, tt.ext, got, tt.want)
			}
		})
	}
}

func TestFilenameCapsLongStems(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Filename("068A", long, "pdf")

	stem := strings.TrimSuffix(got, ".pdf")
	if len(stem) > 120 {
		t.Errorf("stem length %d exceeds cap", len(stem))
	}
	if !strings.HasPrefix(got, "068A_") {
		t.Errorf("filename %q lost its id prefix", got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("filename %q lost its extension", got)
	}
}

func TestShard(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"068A_Report.pdf", "06"},
		{"ABcd", "ab"},
		{"x", "x_"},
		{"", "__"},
	}
	for _, tt := range tests {
		if got := Shard(tt.in); got != tt.want {
			t.Errorf("Shard(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	got := Key("files", "068A_Report.pdf")
	want := "files/06/068A_Report.pdf"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestKeyStability(t *testing.T) {
	// The same candidate must always map to the same key; resume and
	// backfill both depend on it.
	a := Key("files", Filename("068XYZ", "My Report", "PDF"))
	b := Key("files", Filename("068XYZ", "My Report", "PDF"))
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
}
