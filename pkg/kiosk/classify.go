package kiosk

import (
	"gocv.io/x/gocv"

	"github.com/ecobin/ecobin/pkg/rewards"
)

// Heuristic thresholds. A frame with enough blue reads as a bottle;
// otherwise a bright frame reads as paper.
const (
	blueRatioThreshold = 0.1
	paperBrightness    = 150.0
)

// Classify guesses the material in a JPEG snapshot. The second return is
// false when the heuristic is unsure. This is a stand-in for a trained
// model.
func Classify(jpeg []byte) (rewards.Material, bool) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return "", false
	}
	defer img.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(90, 50, 50, 0),
		gocv.NewScalar(130, 255, 255, 0),
		&mask)

	total := float64(mask.Rows() * mask.Cols())
	if total > 0 {
		blueRatio := float64(gocv.CountNonZero(mask)) / total
		if blueRatio > blueRatioThreshold {
			return rewards.MaterialBottle, true
		}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	if gray.Mean().Val1 > paperBrightness {
		return rewards.MaterialPaper, true
	}

	return "", false
}
