package sdb

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// The checksummed range runs from the opening SdbData tag through its
// closing tag. The two dialect families locate and treat that range
// differently and the code paths stay separate on purpose: merging them
// would couple two genuinely different normalization rules.
var (
	checksumOpenMarker  = []byte("<" + elemData + ">")
	checksumCloseMarker = []byte("</" + elemData + ">")
)

// computeLegacyChecksum finds the range by text search, normalizes CRLF to
// LF within the substring only, and returns the one's complement of its
// CRC-32. The live newline style of the file never affects the result.
func computeLegacyChecksum(text string) (uint32, error) {
	start := strings.Index(text, string(checksumOpenMarker))
	end := strings.Index(text, string(checksumCloseMarker))
	if start < 0 || end < 0 || end < start {
		return 0, fmt.Errorf("%w: %s", ErrMissingElement, elemData)
	}
	sub := text[start : end+len(checksumCloseMarker)]
	sub = strings.ReplaceAll(sub, "\r\n", "\n")
	return ^crc32.ChecksumIEEE([]byte(sub)), nil
}

// computeEChecksum finds the range by binary marker search over the raw
// bytes. The range includes the line break immediately after the closing
// tag, so no text-level normalization may run here.
func computeEChecksum(raw []byte) (uint32, error) {
	start := bytes.Index(raw, checksumOpenMarker)
	closeIdx := bytes.Index(raw, checksumCloseMarker)
	if start < 0 || closeIdx < 0 || closeIdx < start {
		return 0, fmt.Errorf("%w: %s", ErrMissingElement, elemData)
	}
	end := closeIdx + len(checksumCloseMarker)
	if end < len(raw) && raw[end] == '\r' {
		end++
	}
	if end < len(raw) && raw[end] == '\n' {
		end++
	}
	return ^crc32.ChecksumIEEE(raw[start:end]), nil
}

// computeChecksum dispatches on the dialect.
func computeChecksum(d Dialect, raw []byte) (uint32, error) {
	if d.IsE() {
		return computeEChecksum(raw)
	}
	return computeLegacyChecksum(string(raw))
}

// formatChecksum renders a checksum the way the dialect stores it:
// uppercase hex, "0x"-prefixed for the legacy dialects, bare for E-Format.
func formatChecksum(d Dialect, sum uint32) string {
	return fmt.Sprintf("%s%08X", d.checksumPrefix(), sum)
}

// parseStoredChecksum parses the stored value, tolerating either prefix
// form and letter case.
func parseStoredChecksum(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: checksum %q", ErrMalformedNumeric, s)
	}
	return uint32(v), nil
}

// verifyChecksum compares the stored value against a fresh computation
// over the raw document bytes.
func verifyChecksum(d Dialect, raw []byte, stored string) error {
	expected, err := parseStoredChecksum(stored)
	if err != nil {
		return err
	}
	computed, err := computeChecksum(d, raw)
	if err != nil {
		return err
	}
	if computed != expected {
		return &ChecksumError{Expected: expected, Computed: computed}
	}
	return nil
}
