package persistence

import (
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Checksum returns the xxh3-64 hash of data.
//
// xxh3 detects accidental corruption only; it is not a tamper seal.
func Checksum(data []byte) uint64 {
	return xxh3.Hash(data)
}

// VerifyChecksum compares the checksum of data with expected.
func VerifyChecksum(data []byte, expected uint64) error {
	if actual := Checksum(data); actual != expected {
		return &ChecksumMismatchError{
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%016x, got 0x%016x", e.Expected, e.Actual)
}

// IsChecksumMismatch returns true if err is or wraps a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}
