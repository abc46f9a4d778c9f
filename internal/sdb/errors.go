package sdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupportedFormat marks a document whose root structure or
	// version marker is absent or not in the accepted set.
	ErrNotSupportedFormat = errors.New("not a supported channel database format")
	// ErrMissingElement marks an absent mandatory sub-block.
	ErrMissingElement = errors.New("mandatory element missing")
	// ErrChecksumMismatch marks a failed integrity verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrMalformedNumeric marks a numeric cell that failed strict parsing.
	ErrMalformedNumeric = errors.New("malformed numeric value")
)

// ChecksumError carries the stored and computed checksum values of a failed
// verification. It matches ErrChecksumMismatch under errors.Is.
type ChecksumError struct {
	Expected uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: stored 0x%08X, computed 0x%08X", e.Expected, e.Computed)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
