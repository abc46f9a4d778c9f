package sdb

import (
	"errors"
	"strings"
	"testing"
)

func TestLegacyChecksumNewlineInvariance(t *testing.T) {
	lf := "<SdbRoot>\n<SdbData>\n<SdbT>\nx\n</SdbT>\n</SdbData>\n<CheckSum>0x0</CheckSum>\n</SdbRoot>\n"
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")

	a, err := computeLegacyChecksum(lf)
	if err != nil {
		t.Fatalf("lf: %v", err)
	}
	b, err := computeLegacyChecksum(crlf)
	if err != nil {
		t.Fatalf("crlf: %v", err)
	}
	if a != b {
		t.Fatalf("legacy checksum depends on newline style: %08X vs %08X", a, b)
	}
}

func TestLegacyChecksumIgnoresBytesOutsideRange(t *testing.T) {
	base := "<SdbRoot>\n<SdbData>\npayload\n</SdbData>\n<CheckSum>0x0</CheckSum>\n</SdbRoot>\n"
	other := strings.Replace(base, "0x0", "0xF", 1)

	a, err := computeLegacyChecksum(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := computeLegacyChecksum(other)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("bytes outside the data envelope changed the legacy checksum")
	}
}

func TestEChecksumIncludesTrailingLineBreak(t *testing.T) {
	withBreak := []byte("<SdbRoot>\n<SdbData>\npayload\n</SdbData>\n<CheckSum>0</CheckSum>\n</SdbRoot>\n")
	withoutBreak := []byte("<SdbRoot>\n<SdbData>\npayload\n</SdbData><CheckSum>0</CheckSum>\n</SdbRoot>\n")

	a, err := computeEChecksum(withBreak)
	if err != nil {
		t.Fatal(err)
	}
	b, err := computeEChecksum(withoutBreak)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("trailing line break after the envelope must be part of the checksummed range")
	}

	// Bytes after that line break stay outside the range.
	tail := []byte(strings.Replace(string(withBreak), "<CheckSum>0<", "<CheckSum>F<", 1))
	c, err := computeEChecksum(tail)
	if err != nil {
		t.Fatal(err)
	}
	if a != c {
		t.Fatal("bytes after the trailing line break changed the e-format checksum")
	}
}

func TestEChecksumCRLFSensitive(t *testing.T) {
	lf := []byte("<SdbRoot>\n<SdbData>\npayload\n</SdbData>\n</SdbRoot>\n")
	crlf := []byte(strings.ReplaceAll(string(lf), "\n", "\r\n"))

	a, err := computeEChecksum(lf)
	if err != nil {
		t.Fatal(err)
	}
	b, err := computeEChecksum(crlf)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("e-format checksum must run over raw bytes without newline normalization")
	}
}

func TestChecksumMissingEnvelope(t *testing.T) {
	if _, err := computeLegacyChecksum("<SdbRoot></SdbRoot>"); !errors.Is(err, ErrMissingElement) {
		t.Fatalf("legacy: got %v, want ErrMissingElement", err)
	}
	if _, err := computeEChecksum([]byte("<SdbRoot></SdbRoot>")); !errors.Is(err, ErrMissingElement) {
		t.Fatalf("e-format: got %v, want ErrMissingElement", err)
	}
}

func TestFormatChecksum(t *testing.T) {
	if got := formatChecksum(DialectLegacy120, 0x1234ABCD); got != "0x1234ABCD" {
		t.Errorf("legacy: got %q", got)
	}
	if got := formatChecksum(DialectE, 0xAB); got != "000000AB" {
		t.Errorf("e-format: got %q", got)
	}
}

func TestParseStoredChecksum(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0x1234ABCD", 0x1234ABCD},
		{"0X00FF00FF", 0x00FF00FF},
		{"deadbeef", 0xDEADBEEF},
		{" 0xA1 ", 0xA1},
	}
	for _, tt := range tests {
		got, err := parseStoredChecksum(tt.in)
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %08X, want %08X", tt.in, got, tt.want)
		}
	}
	if _, err := parseStoredChecksum("zz"); !errors.Is(err, ErrMalformedNumeric) {
		t.Errorf("malformed value: got %v, want ErrMalformedNumeric", err)
	}
}

func TestVerifyChecksumMismatch(t *testing.T) {
	raw := []byte("<SdbRoot>\n<SdbData>\npayload\n</SdbData>\n</SdbRoot>\n")
	err := verifyChecksum(DialectLegacy120, raw, "0x00000000")
	var cerr *ChecksumError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *ChecksumError", err)
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatal("ChecksumError must match ErrChecksumMismatch")
	}
	if cerr.Expected != 0 || cerr.Computed == 0 {
		t.Fatalf("unexpected fields: expected=%08X computed=%08X", cerr.Expected, cerr.Computed)
	}

	sum, err2 := computeChecksum(DialectLegacy120, raw)
	if err2 != nil {
		t.Fatal(err2)
	}
	if err := verifyChecksum(DialectLegacy120, raw, formatChecksum(DialectLegacy120, sum)); err != nil {
		t.Fatalf("matching checksum rejected: %v", err)
	}
}
