package rewards

import "testing"

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points int
		index  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{400, 4},
		{799, 4},
		{800, 5},
		{5000, 5},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.points); got.Index != tt.index {
			t.Errorf("LevelFor(%d).Index = %d, want %d", tt.points, got.Index, tt.index)
		}
	}
}

func TestLevelNextThreshold(t *testing.T) {
	if got := LevelFor(0).NextThreshold; got != 100 {
		t.Errorf("next threshold at 0 points = %d, want 100", got)
	}
	if got := LevelFor(1000).NextThreshold; got != 0 {
		t.Errorf("top level next threshold = %d, want 0", got)
	}
}

func TestProgressFor(t *testing.T) {
	if got := ProgressFor(150); got != 0.5 {
		t.Errorf("ProgressFor(150) = %v, want 0.5", got)
	}
	if got := ProgressFor(1000); got != 1.0 {
		t.Errorf("ProgressFor(1000) = %v, want 1.0 at top level", got)
	}
	if got := ProgressFor(0); got != 0 {
		t.Errorf("ProgressFor(0) = %v, want 0", got)
	}
}

func TestPointsFor(t *testing.T) {
	if p, err := PointsFor(MaterialBottle); err != nil || p != 100 {
		t.Errorf("bottle = %d, %v; want 100, nil", p, err)
	}
	if p, err := PointsFor(MaterialPaper); err != nil || p != 50 {
		t.Errorf("paper = %d, %v; want 50, nil", p, err)
	}
	if _, err := PointsFor("glass"); err != ErrUnknownMaterial {
		t.Errorf("glass error = %v, want ErrUnknownMaterial", err)
	}
}
