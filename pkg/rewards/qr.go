package rewards

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the generated image size in pixels.
const QRSize = 256

// QRCache writes reward QR images to disk and reuses existing files.
type QRCache struct {
	dir string
}

// NewQRCache creates the cache directory if needed.
func NewQRCache(dir string) (*QRCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr dir: %w", err)
	}
	return &QRCache{dir: dir}, nil
}

// ImagePath returns the on-disk path for a token's QR image.
func (c *QRCache) ImagePath(tokenValue string) string {
	return filepath.Join(c.dir, tokenValue+".png")
}

// Ensure generates the QR PNG for the redeem URL if it is not cached yet
// and returns its path.
func (c *QRCache) Ensure(tokenValue, redeemURL string) (string, error) {
	path := c.ImagePath(tokenValue)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := qrcode.WriteFile(redeemURL, qrcode.Medium, QRSize, path); err != nil {
		return "", fmt.Errorf("write qr image: %w", err)
	}
	return path, nil
}
