// Package png renders verification links as QR images.
package png

import "github.com/skip2/go-qrcode"

const defaultSize = 300

// Qr renders content as a square PNG QR code, defaultSize pixels a side.
func Qr(content string) ([]byte, error) {
	return QrSized(content, defaultSize)
}

// QrSized renders content at the given pixel size with medium error recovery.
func QrSized(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
