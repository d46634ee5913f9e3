package kiosk

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/ecobin/ecobin/pkg/rewards"
)

func solidJPEG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestClassifyBlueIsBottle(t *testing.T) {
	material, ok := Classify(solidJPEG(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}))
	if !ok || material != rewards.MaterialBottle {
		t.Errorf("blue frame = %q, %v; want bottle", material, ok)
	}
}

func TestClassifyBrightIsPaper(t *testing.T) {
	material, ok := Classify(solidJPEG(t, color.RGBA{R: 220, G: 220, B: 220, A: 255}))
	if !ok || material != rewards.MaterialPaper {
		t.Errorf("bright frame = %q, %v; want paper", material, ok)
	}
}

func TestClassifyDarkIsUnsure(t *testing.T) {
	if material, ok := Classify(solidJPEG(t, color.RGBA{R: 30, G: 30, B: 30, A: 255})); ok {
		t.Errorf("dark frame = %q, want unsure", material)
	}
}

func TestClassifyGarbageInput(t *testing.T) {
	if _, ok := Classify([]byte("not a jpeg")); ok {
		t.Error("garbage input must be unsure")
	}
}
