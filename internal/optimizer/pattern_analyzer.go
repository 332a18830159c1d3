package optimizer

import (
	"sort"
	"time"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// Patterns holds frequency counts of completed sessions.
type Patterns struct {
	Hour     map[int]int
	Weekday  map[time.Weekday]int
	Duration map[int]int
	Category map[string]int
}

// Suggestion is a proposed slot scored against historical usage.
type Suggestion struct {
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeHistorical counts start hour, weekday, duration and category over
// completed sessions only. Sessions with malformed dates are ignored.
func AnalyzeHistorical(sessions []models.Session) Patterns {
	p := Patterns{
		Hour:     make(map[int]int),
		Weekday:  make(map[time.Weekday]int),
		Duration: make(map[int]int),
		Category: make(map[string]int),
	}
	for _, s := range sessions {
		if s.Status != models.StatusCompleted {
			continue
		}
		start, err := utils.WallClock(s.Date, s.Time)
		if err != nil {
			continue
		}
		p.Hour[start.Hour()]++
		p.Weekday[start.Weekday()]++
		p.Duration[s.DurationMin]++
		p.Category[s.Category]++
	}
	return p
}

// Confidence scores how closely a slot matches history, in [0, 1].
func Confidence(date time.Time, clock string, p Patterns) float64 {
	t, err := utils.ParseTime(clock)
	if err != nil {
		return 0
	}

	maxHour := 1
	for _, n := range p.Hour {
		maxHour = max(maxHour, n)
	}
	maxDay := 1
	for _, n := range p.Weekday {
		maxDay = max(maxDay, n)
	}

	hourScore := clamp(float64(p.Hour[t.Hour()]) / float64(maxHour))
	dayScore := clamp(float64(p.Weekday[date.Weekday()]) / float64(maxDay))
	return (hourScore + dayScore) / 2
}

// SortSuggestions orders suggestions by descending confidence, keeping the
// original order between equal scores.
func SortSuggestions(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
