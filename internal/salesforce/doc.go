// Package salesforce wraps the Salesforce REST API surface the exporter
// needs: paginated SOQL queries, streaming binary retrieval, and id prefix
// conventions.
//
// The client retries server errors with exponential backoff and jitter and
// maps non-success status codes to typed sentinel errors (ErrNotFound,
// ErrForbidden, ErrUnauthorized, ErrRateLimited) so callers can classify
// per-item failures. Authentication is injected through the TokenSource
// interface; the OAuth machinery itself lives outside this repo.
package salesforce
