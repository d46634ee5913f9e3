package rewards

// Level is one rung of the points ladder.
type Level struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Threshold     int    `json:"threshold"`
	NextThreshold int    `json:"next_threshold,omitempty"` // 0 means top level
}

// Levels is the points ladder, lowest first.
var Levels = []Level{
	{Index: 1, Name: "Новичок", Threshold: 0},
	{Index: 2, Name: "Собирающий", Threshold: 100},
	{Index: 3, Name: "Эко-герой", Threshold: 200},
	{Index: 4, Name: "Наставник", Threshold: 400},
	{Index: 5, Name: "Легенда", Threshold: 800},
}

// LevelFor returns the highest level whose threshold the points reach.
func LevelFor(points int) Level {
	lvl := Levels[0]
	for _, l := range Levels {
		if points >= l.Threshold {
			lvl = l
		}
	}
	if lvl.Index < len(Levels) {
		lvl.NextThreshold = Levels[lvl.Index].Threshold
	}
	return lvl
}

// ProgressFor returns the 0..1 progress toward the next level.
// Top-level users are always at 1.
func ProgressFor(points int) float64 {
	lvl := LevelFor(points)
	if lvl.NextThreshold == 0 {
		return 1.0
	}
	span := float64(lvl.NextThreshold - lvl.Threshold)
	progress := float64(points-lvl.Threshold) / span
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
