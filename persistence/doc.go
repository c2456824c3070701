// Package persistence saves and loads collection snapshots to a blob store.
//
// A snapshot is stored as a single self-describing frame:
//
//	magic "DSN1" | version | compression | codec name | payload length | xxh3-64 | payload
//
// The payload is the codec-encoded docstore.Snapshot, optionally compressed.
// The checksum covers the stored (compressed) payload so corruption is
// detected before decompression. All integers are little-endian.
package persistence
