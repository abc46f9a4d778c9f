package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// IntegrityQR creates a QR code PNG encoding the database checksum, so a
// printed report can be matched against the file it describes.
func IntegrityQR(checksum string, size int) ([]byte, error) {
	normalized := sanitizeChecksum(checksum)
	if normalized == "" {
		return nil, fmt.Errorf("checksum is empty")
	}
	if size <= 0 {
		size = 128
	}
	png, err := qrcode.Encode(normalized, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func sanitizeChecksum(checksum string) string {
	upper := strings.ToUpper(strings.TrimSpace(checksum))
	upper = strings.TrimPrefix(upper, "0X")
	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r)
		}
	}
	return b.String()
}
