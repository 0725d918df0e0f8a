// Package sharded stores downloaded binaries in a two-level sharded layout
// on top of gocloud.dev/blob.
//
// Every file lands under a kind directory, then a fixed-width two-character
// shard derived from its sanitized filename:
//
//	{root}/files/06/068xx..._Invoice_2024.pdf
//	{root}/files_legacy/00/00Pxx..._scan.tif
//
// Sharding bounds the number of entries per directory so exports with
// millions of files stay navigable on ordinary filesystems. The shard is a
// pure function of the filename, so re-runs always resolve the same key.
//
// [Store] wraps a bucket and adds the operations the download executor
// needs: existence checks for resume, hashed streaming writes, and rehashing
// of already-present blobs. Buckets are opened by URL (file:// for local
// export roots, mem:// in tests), so the package is storage-agnostic.
package sharded
