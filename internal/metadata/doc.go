// Package metadata records download outcomes and document-link associations
// as flat CSV tables, one row per outcome in processing order.
//
// Output files are always created with headers, even for empty runs, so the
// auditor and other downstream tooling never have to handle a missing file.
package metadata
