package mood

import (
	"testing"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(scores ...int) []domain.JournalEntry {
	out := make([]domain.JournalEntry, len(scores))
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, s := range scores {
		out[i] = domain.JournalEntry{
			ID:        string(rune('a' + i)),
			Date:      base.AddDate(0, 0, -i),
			MoodScore: domain.IntPtr(s),
		}
	}
	return out
}

func TestAverageRoundsHalfUp(t *testing.T) {
	tests := []struct {
		scores []int
		want   int
	}{
		{[]int{9, 7, 5}, 7},
		{[]int{5, 6}, 6},
		{[]int{4, 5}, 5},
		{[]int{1, 2, 2}, 2},
		{[]int{0}, 0},
		{[]int{10, 10}, 10},
	}
	for _, tt := range tests {
		got, ok := Average(entries(tt.scores...))
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "scores %v", tt.scores)
	}

	_, ok := Average(nil)
	assert.False(t, ok)
	assert.Nil(t, Current(nil))
}

func TestAverageIgnoresUnscored(t *testing.T) {
	es := entries(8, 6)
	es = append(es, domain.JournalEntry{ID: "x"})
	got, ok := Average(es)
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestBandBoundaries(t *testing.T) {
	tests := []struct {
		score int
		emoji string
		color string
	}{
		{10, "😊", "#4CAF50"},
		{8, "😊", "#4CAF50"},
		{7, "🙂", "#8BC34A"},
		{6, "🙂", "#8BC34A"},
		{4, "😐", "#FFC107"},
		{2, "🙁", "#FF9800"},
		{1, "😢", "#F44336"},
		{0, "😢", "#F44336"},
	}
	for _, tt := range tests {
		b := BandFor(domain.IntPtr(tt.score))
		assert.Equal(t, tt.emoji, b.Emoji, "score %d", tt.score)
		assert.Equal(t, tt.color, b.Color, "score %d", tt.score)
	}
	assert.Equal(t, "😐", Emoji(nil))
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   Trend
	}{
		{"empty", nil, TrendStable},
		{"single", []int{10}, TrendStable},
		{"improving", []int{9, 7, 5}, TrendImproving},
		{"declining", []int{3, 6, 6}, TrendDeclining},
		{"within one", []int{7, 6, 6}, TrendStable},
		{"only first three count", []int{5, 5, 5, 0, 0}, TrendStable},
		{"two entries", []int{9, 5}, TrendImproving},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendOf(entries(tt.scores...)))
		})
	}
}

func TestScenarioAverageAndTrend(t *testing.T) {
	es := entries(9, 7, 5)
	cur := Current(es)
	require.NotNil(t, cur)
	assert.Equal(t, 7, cur.Score)
	assert.Equal(t, "🙂", cur.Band.Emoji)
	assert.Equal(t, TrendImproving, TrendOf(es))
	assert.Equal(t, "Improving", TrendOf(es).Title())
}

func TestGraphKeepsLastSevenAscending(t *testing.T) {
	es := entries(1, 2, 3, 4, 5, 6, 7, 8, 9)
	points := Graph(es)
	require.Len(t, points, GraphWindow)

	// entries are newest first, so the newest seven are scores 1..7
	assert.Equal(t, 7, *points[0].Score)
	assert.Equal(t, 1, *points[6].Score)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Date.Before(points[i].Date))
	}
	assert.Equal(t, "Mar 10", points[6].Label)
	assert.Equal(t, "#F44336", points[6].Color)
}

func TestSparkline(t *testing.T) {
	points := []Point{
		{Score: domain.IntPtr(0)},
		{Score: nil},
		{Score: domain.IntPtr(10)},
	}
	assert.Equal(t, "▁ █", Sparkline(points))
}
