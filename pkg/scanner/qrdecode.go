package scanner

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// QRDecoder decodes QR symbols using OpenCV's QRCodeDetector.
type QRDecoder struct {
	detector gocv.QRCodeDetector
	box      image.Point
	mu       sync.Mutex // Protects inference
}

// NewQRDecoder creates a QR decoder restricted to the config's scan box.
// It satisfies DecoderFactory.
func NewQRDecoder(cfg Config) (Decoder, error) {
	return &QRDecoder{
		detector: gocv.NewQRCodeDetector(),
		box:      image.Pt(cfg.BoxWidth, cfg.BoxHeight),
	}, nil
}

// Decode attempts to read a QR symbol from the centered scan box of the
// JPEG frame. It returns an empty string when no symbol is found.
func (d *QRDecoder) Decode(jpeg []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	roi := img
	rect := d.scanRect(img.Cols(), img.Rows())
	cropped := rect.Dx() < img.Cols() || rect.Dy() < img.Rows()
	if cropped {
		roi = img.Region(rect)
		defer roi.Close()
	}

	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()

	return d.detector.DetectAndDecode(roi, &points, &straight), nil
}

// scanRect returns the centered scan box clamped to the frame bounds.
func (d *QRDecoder) scanRect(w, h int) image.Rectangle {
	bw, bh := d.box.X, d.box.Y
	if bw <= 0 || bw > w {
		bw = w
	}
	if bh <= 0 || bh > h {
		bh = h
	}
	x := (w - bw) / 2
	y := (h - bh) / 2
	return image.Rect(x, y, x+bw, y+bh)
}

// Close releases the detector resources.
func (d *QRDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
