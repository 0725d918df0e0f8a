// Package downloader is the concurrent download executor.
//
// It processes an ordered candidate set with a bounded worker pool, streams
// each binary into sharded storage while hashing it, and produces exactly one
// outcome per candidate regardless of how many individual retrievals fail.
//
// # Failure containment
//
// A run always completes with a full accounting. Retrieval and local I/O
// errors are contained per item: they become the item's outcome error and the
// batch continues. Only the caller's enumeration step can abort a run.
//
// # Worker pool
//
// Workers receive candidate indices from a channel and write results into
// disjoint slots of a shared outcome slice, so results correlate back to
// candidates by position, not by completion order.
package downloader
