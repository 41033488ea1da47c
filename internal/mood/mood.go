// Package mood holds the dashboard arithmetic over journal entries:
// average score, emoji/color bands, trend and the graph series.
// Every function is pure; callers pass the entries newest first.
package mood

import (
	"math"
	"sort"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
)

// Trend is the direction of recent mood scores
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Title is the capitalized label for display
func (t Trend) Title() string {
	switch t {
	case TrendImproving:
		return "Improving"
	case TrendDeclining:
		return "Declining"
	default:
		return "Stable"
	}
}

// Band is one of the five score ranges, each with its emoji and color
type Band struct {
	Min   int    `json:"-"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// Bands are ordered from highest to lowest; lower bounds are inclusive
var Bands = []Band{
	{Min: 8, Emoji: "😊", Color: "#4CAF50", Label: "happy"},
	{Min: 6, Emoji: "🙂", Color: "#8BC34A", Label: "good"},
	{Min: 4, Emoji: "😐", Color: "#FFC107", Label: "neutral"},
	{Min: 2, Emoji: "🙁", Color: "#FF9800", Label: "sad"},
	{Min: math.MinInt, Emoji: "😢", Color: "#F44336", Label: "very sad"},
}

// neutral is shown for entries that were never scored
var neutral = Bands[2]

// BandFor maps a score to its band; nil maps to the neutral band
func BandFor(score *int) Band {
	if score == nil {
		return neutral
	}
	for _, b := range Bands {
		if *score >= b.Min {
			return b
		}
	}
	return Bands[len(Bands)-1]
}

// Emoji is shorthand for BandFor(score).Emoji
func Emoji(score *int) string {
	return BandFor(score).Emoji
}

// Reading is the dashboard's current mood
type Reading struct {
	Score int  `json:"score"`
	Band  Band `json:"band"`
}

// scores returns the scores of scored entries, keeping order
func scores(entries []domain.JournalEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.HasScore() {
			out = append(out, *e.MoodScore)
		}
	}
	return out
}

// roundHalfUp rounds to the nearest integer with .5 going up
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Average is the mean of all scores rounded half-up and clamped to [0,10].
// ok is false when no entry has a score.
func Average(entries []domain.JournalEntry) (avg int, ok bool) {
	s := scores(entries)
	if len(s) == 0 {
		return 0, false
	}
	total := 0
	for _, v := range s {
		total += v
	}
	avg = roundHalfUp(float64(total) / float64(len(s)))
	if avg < 0 {
		avg = 0
	}
	if avg > 10 {
		avg = 10
	}
	return avg, true
}

// Current returns the averaged reading, or nil without scored entries
func Current(entries []domain.JournalEntry) *Reading {
	avg, ok := Average(entries)
	if !ok {
		return nil
	}
	return &Reading{Score: avg, Band: BandFor(&avg)}
}

// TrendOf compares the newest score to the mean of the three newest
func TrendOf(entries []domain.JournalEntry) Trend {
	s := scores(entries)
	if len(s) < 2 {
		return TrendStable
	}
	if len(s) > 3 {
		s = s[:3]
	}

	total := 0
	for _, v := range s {
		total += v
	}
	mean := float64(total) / float64(len(s))
	latest := float64(s[0])

	switch {
	case latest > mean+1:
		return TrendImproving
	case latest < mean-1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Point is one sample of the mood graph
type Point struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Score *int      `json:"score"`
	Color string    `json:"color"`
}

// GraphWindow is how many entries the graph shows
const GraphWindow = 7

// Graph returns the last GraphWindow entries in ascending date order
func Graph(entries []domain.JournalEntry) []Point {
	sorted := make([]domain.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if len(sorted) > GraphWindow {
		sorted = sorted[len(sorted)-GraphWindow:]
	}

	points := make([]Point, len(sorted))
	for i, e := range sorted {
		points[i] = Point{
			Date:  e.Date,
			Label: e.Date.Format("Jan 02"),
			Score: e.MoodScore,
			Color: BandFor(e.MoodScore).Color,
		}
	}
	return points
}

// Sparkline draws scores 0-10 as block characters; unscored points are blank
func Sparkline(points []Point) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	out := make([]rune, len(points))
	for i, p := range points {
		if p.Score == nil {
			out[i] = ' '
			continue
		}
		v := *p.Score
		if v < 0 {
			v = 0
		}
		if v > 10 {
			v = 10
		}
		out[i] = blocks[v*(len(blocks)-1)/10]
	}
	return string(out)
}
