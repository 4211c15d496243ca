// Package qrcode issues the check-in QR payload of an attendance session:
// a one-off session id, the public check-in URL and its PNG rendering.
package qrcode

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"

	goqrcode "github.com/skip2/go-qrcode"

	"kanisa_backend/internals/helpers/apperr"
)

const (
	DefaultPath     = "/checkin/"
	DefaultValidity = 4 * time.Hour
	ImageSize       = 256

	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLen      = 6
)

type IssueOptions struct {
	BaseURL  string
	Path     string
	Validity time.Duration
	Now      time.Time
}

type QRCode struct {
	SessionID string
	URL       string
	ExpiresAt time.Time
	PNG       []byte
}

func (q *QRCode) DataURL() string {
	return DataURL(q.PNG)
}

func DataURL(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Issue builds a fresh QR sub-record. Zero options fall back to the
// defaults (4h validity, /checkin/ path, current time).
func Issue(opt IssueOptions) (*QRCode, error) {
	now := opt.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	validity := opt.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}

	id, err := NewSessionID(now)
	if err != nil {
		return nil, apperr.Internal("failed to generate QR session id", err)
	}
	url := CheckinURL(opt.BaseURL, opt.Path, id)

	png, err := Render(url)
	if err != nil {
		return nil, err
	}
	return &QRCode{
		SessionID: id,
		URL:       url,
		ExpiresAt: now.Add(validity).UTC(),
		PNG:       png,
	}, nil
}

// Render encodes content as a PNG QR code.
func Render(content string) ([]byte, error) {
	png, err := goqrcode.Encode(content, goqrcode.Medium, ImageSize)
	if err != nil {
		return nil, apperr.Internal("failed to generate QR code", err)
	}
	return png, nil
}

// NewSessionID returns qr_<unix-nanos>_<6 chars [a-z0-9]>.
func NewSessionID(now time.Time) (string, error) {
	var b strings.Builder
	alphabetLen := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b.WriteByte(suffixAlphabet[n.Int64()])
	}
	return fmt.Sprintf("qr_%d_%s", now.UnixNano(), b.String()), nil
}

func CheckinURL(baseURL, path, sessionID string) string {
	if path == "" {
		path = DefaultPath
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return base + path + sessionID
}
