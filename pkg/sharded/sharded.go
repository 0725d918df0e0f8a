package sharded

import (
	"path"
	"regexp"
	"strings"
)

// fallbackName is used when sanitization leaves nothing usable.
const fallbackName = "file"

// maxStemLen bounds the filename stem so the full path stays portable.
const maxStemLen = 120

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// Sanitize makes a portable filename: characters illegal in file paths and
// whitespace runs become underscores, leading/trailing underscores are
// stripped, and an empty result falls back to "file".
func Sanitize(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return fallbackName
	}
	return safe
}

// Filename builds the stored filename for a file: <id>_<sanitized name>,
// capped to a portable length, plus the lowercased extension when present.
func Filename(fileID, name, ext string) string {
	stem := fileID + "_" + Sanitize(name)
	if len(stem) > maxStemLen {
		stem = strings.TrimRight(stem[:maxStemLen], "_ ")
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// Shard returns the fixed-width two-character, lowercase shard directory for
// a filename. Sharding bounds per-directory fanout; files are never stored in
// a single flat directory.
func Shard(filename string) string {
	r := []rune(strings.ToLower(filename))
	for len(r) < 2 {
		r = append(r, '_')
	}
	return string(r[:2])
}

// Key returns the storage key for a filename under a kind directory:
// <kindDir>/<shard>/<filename>.
func Key(kindDir, filename string) string {
	return path.Join(kindDir, Shard(filename), filename)
}
