package scanner

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures JPEG frames from a local camera device.
type Webcam struct {
	device int

	mu  sync.Mutex
	cap *gocv.VideoCapture
}

// NewWebcam creates an unopened frame source for the given device index.
func NewWebcam(device int) *Webcam {
	return &Webcam{device: device}
}

// NewWebcamForFacing picks a device index by camera facing. On kiosk
// hardware the rear camera is device 0 and a user-facing camera, when
// present, is device 1.
func NewWebcamForFacing(f Facing) *Webcam {
	if f == FacingUser {
		return NewWebcam(1)
	}
	return NewWebcam(0)
}

// Open acquires the capture device.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap != nil {
		return nil
	}
	vc, err := gocv.OpenVideoCapture(w.device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", w.device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("camera %d not available", w.device)
	}
	w.cap = vc
	return nil
}

// Read grabs one frame and returns it JPEG-encoded.
func (w *Webcam) Read() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil, fmt.Errorf("camera not open")
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.cap.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("read frame from camera %d", w.device)
	}

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}
