package salesforce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(server *httptest.Server) *Client {
	opts := DefaultOptions()
	opts.InstanceURL = server.URL
	opts.Tokens = StaticToken("test-token")
	opts.RetryAttempts = 2
	opts.RetryBackoff = time.Millisecond
	opts.RetryMaxBackoff = 5 * time.Millisecond
	return NewClient(opts)
}

func TestQueryAllSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if q := r.URL.Query().Get("q"); q != "SELECT Id FROM Attachment" {
			t.Errorf("q = %q", q)
		}
		fmt.Fprint(w, `{"totalSize":2,"done":true,"records":[{"Id":"00P1"},{"Id":"00P2"}]}`)
	}))
	defer server.Close()

	records, err := testClient(server).QueryAll(context.Background(), "SELECT Id FROM Attachment")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["Id"] != "00P1" {
		t.Errorf("first record = %v", records[0])
	}
}

func TestQueryAllFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/data/v59.0/query":
			fmt.Fprint(w, `{"done":false,"nextRecordsUrl":"/services/data/v59.0/query/01g-2000","records":[{"Id":"a"}]}`)
		case "/services/data/v59.0/query/01g-2000":
			fmt.Fprint(w, `{"done":true,"records":[{"Id":"b"},{"Id":"c"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	records, err := testClient(server).QueryAll(context.Background(), "SELECT Id FROM ContentVersion")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 across pages", len(records))
	}
	if records[2]["Id"] != "c" {
		t.Errorf("last record = %v", records[2])
	}
}

func TestTypedStatusErrors(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			_, err := testClient(server).Fetch(context.Background(), "/services/data/v59.0/sobjects/Attachment/00P1/Body")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "binary data")
	}))
	defer server.Close()

	body, err := testClient(server).Fetch(context.Background(), "/blob")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "binary data" {
		t.Errorf("body = %q", data)
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}

func TestRetryExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server).Fetch(context.Background(), "/blob")
	if !errors.Is(err, ErrServerError) {
		t.Errorf("err = %v, want %v", err, ErrServerError)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testClient(server).Fetch(context.Background(), "/blob")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want %v", err, ErrForbidden)
	}
	if calls.Load() != 1 {
		t.Errorf("client errors were retried: %d calls", calls.Load())
	}
}

func TestLatestVersionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/data/v59.0/sobjects/ContentDocument/069X" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"Id":"069X","LatestPublishedVersionId":"068Y"}`)
	}))
	defer server.Close()

	id, err := testClient(server).LatestVersionID(context.Background(), "069X")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "068Y" {
		t.Errorf("id = %s, want 068Y", id)
	}
}

func TestLatestVersionIDUnpublished(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Id":"069X","LatestPublishedVersionId":null}`)
	}))
	defer server.Close()

	_, err := testClient(server).LatestVersionID(context.Background(), "069X")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want %v", err, ErrNotFound)
	}
}
