// Package cache persists Sofascore payloads under <root>/<resource>/<key>.json.
// Each file holds a JSON envelope (payload, write time, optional max-age and
// source URL); bare payloads written by older versions are still readable and
// never expire on their own. Reads apply two freshness gates: the file mtime
// against the caller's max-age, then the entry's embedded max-age. Corrupt
// files read as misses, while filesystem failures on the write path surface as
// *StorageError. Writes go through temp file + rename so readers never see a
// partially written entry.
package cache
