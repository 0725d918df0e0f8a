package salesforce

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

func TestContentFilesMapping(t *testing.T) {
	var gotSOQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSOQL = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"done":true,"records":[
			{"Id":"068A","ContentDocumentId":"069A","Title":"Quarterly Report","FileType":"PDF","ContentSize":100,"VersionNumber":"2"}
		]}`)
	}))
	defer server.Close()

	enum := NewEnumerator(testClient(server), DefaultPrefixes(), "", nil)
	candidates, err := enum.ContentFiles(context.Background(), "")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}

	if !strings.Contains(gotSOQL, "FROM ContentVersion WHERE IsLatest = true") {
		t.Errorf("soql = %q", gotSOQL)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	c := candidates[0]
	if c.FileID != "068A" || c.FileLinkID != "069A" || c.FileName != "Quarterly Report" {
		t.Errorf("candidate = %+v", c)
	}
	if c.FileExtension != "pdf" {
		t.Errorf("extension = %q, want lowercased pdf", c.FileExtension)
	}
	if c.FileSource != entity.SourceFile {
		t.Errorf("source = %q", c.FileSource)
	}
}

func TestContentFilesWhereClause(t *testing.T) {
	var gotSOQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSOQL = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"done":true,"records":[]}`)
	}))
	defer server.Close()

	enum := NewEnumerator(testClient(server), nil, "", nil)
	if _, err := enum.ContentFiles(context.Background(), "CreatedDate > 2024-01-01T00:00:00Z"); err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if !strings.Contains(gotSOQL, "AND (CreatedDate > 2024-01-01T00:00:00Z)") {
		t.Errorf("where not appended: %q", gotSOQL)
	}
}

func TestAttachmentsMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true,"records":[
			{"Id":"00P1","ParentId":"001xx0000000001AAA","Name":"contract.pdf","BodyLength":512,"ContentType":"application/pdf"},
			{"Id":"00P2","ParentId":"500xx0000000001AAA","Name":"log.txt","BodyLength":10,"ContentType":"text/plain"}
		]}`)
	}))
	defer server.Close()

	enum := NewEnumerator(testClient(server), DefaultPrefixes(), "", nil)
	candidates, err := enum.Attachments(context.Background(), "")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	if candidates[0].ObjectType != "Account" || candidates[0].RecordID != "001xx0000000001AAA" {
		t.Errorf("candidate 0 = %+v", candidates[0])
	}
	if candidates[1].ObjectType != "Case" {
		t.Errorf("candidate 1 object type = %q", candidates[1].ObjectType)
	}
	if candidates[0].FileSource != entity.SourceAttachment {
		t.Errorf("source = %q", candidates[0].FileSource)
	}
}

func TestEnumerationOrdering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true,"records":[
			{"Id":"068B"},{"Id":"068A"},{"Id":"068C"}
		]}`)
	}))
	defer server.Close()

	for _, tt := range []struct {
		order string
		want  []string
	}{
		{"", []string{"068B", "068A", "068C"}},
		{"asc", []string{"068A", "068B", "068C"}},
		{"desc", []string{"068C", "068B", "068A"}},
	} {
		t.Run("order="+tt.order, func(t *testing.T) {
			enum := NewEnumerator(testClient(server), nil, tt.order, nil)
			candidates, err := enum.ContentFiles(context.Background(), "")
			if err != nil {
				t.Fatalf("enumerate: %v", err)
			}
			for i, want := range tt.want {
				if candidates[i].FileID != want {
					t.Errorf("position %d = %s, want %s", i, candidates[i].FileID, want)
				}
			}
		})
	}
}

func TestLinksChunking(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"done":true,"records":[
			{"ContentDocumentId":"069A","LinkedEntityId":"001X","ShareType":"V","Visibility":"AllUsers"}
		]}`)
	}))
	defer server.Close()

	// 450 ids need 3 queries of at most 200.
	ids := make([]string, 450)
	for i := range ids {
		ids[i] = fmt.Sprintf("069%09d", i)
	}

	enum := NewEnumerator(testClient(server), nil, "", nil)
	links, err := enum.Links(context.Background(), ids)
	if err != nil {
		t.Fatalf("links: %v", err)
	}

	if len(queries) != 3 {
		t.Fatalf("got %d queries, want 3", len(queries))
	}
	if got := strings.Count(queries[0], "'"); got != 200*2 {
		t.Errorf("first chunk has %d quotes, want %d", got, 400)
	}
	if got := strings.Count(queries[2], "'"); got != 50*2 {
		t.Errorf("last chunk has %d quotes, want %d", got, 100)
	}
	if len(links) != 3 {
		t.Errorf("got %d links, want one per chunk", len(links))
	}
	if links[0].LinkedEntityID != "001X" || links[0].Visibility != "AllUsers" {
		t.Errorf("link = %+v", links[0])
	}
}

func TestLinksEmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no query expected for empty input")
	}))
	defer server.Close()

	enum := NewEnumerator(testClient(server), nil, "", nil)
	links, err := enum.Links(context.Background(), nil)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("got %d links", len(links))
	}
}

func TestEstimates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch {
		case strings.Contains(q, "FROM ContentVersion"):
			fmt.Fprint(w, `{"done":true,"records":[{"Id":"068A","ContentSize":1000},{"Id":"068B","ContentSize":2000}]}`)
		case strings.Contains(q, "FROM Attachment"):
			fmt.Fprint(w, `{"done":true,"records":[{"Id":"00P1","BodyLength":500}]}`)
		default:
			t.Errorf("unexpected soql %q", q)
		}
	}))
	defer server.Close()

	enum := NewEnumerator(testClient(server), nil, "", nil)

	files, err := enum.EstimateContentFiles(context.Background(), "")
	if err != nil {
		t.Fatalf("estimate files: %v", err)
	}
	if files.Count != 2 || files.TotalBytes != 3000 {
		t.Errorf("files estimate = %+v", files)
	}

	attachments, err := enum.EstimateAttachments(context.Background(), "")
	if err != nil {
		t.Fatalf("estimate attachments: %v", err)
	}
	if attachments.Count != 1 || attachments.TotalBytes != 500 {
		t.Errorf("attachments estimate = %+v", attachments)
	}
}
