package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Journal is an entry as returned by GET /journals
type Journal struct {
	ID        string    `json:"id"`
	Date      Timestamp `json:"date"`
	Text      string    `json:"text"`
	MoodScore *float64  `json:"mood_score"`
	Summary   string    `json:"summary"`
	Title     string    `json:"title,omitempty"`
}

// SaveRequest is the body of POST /save
type SaveRequest struct {
	Journal   string `json:"journal"`
	MoodScore int    `json:"mood_score"`
	Summary   string `json:"summary"`
}

// SaveResponse is what POST /save returns; only ID is guaranteed
type SaveResponse struct {
	ID      FlexibleID `json:"id"`
	Date    Timestamp  `json:"date"`
	Title   string     `json:"title,omitempty"`
	Message string     `json:"message,omitempty"`
}

// GenerateResponse is what POST /generate returns
type GenerateResponse struct {
	MoodScore *float64 `json:"mood_score"`
	Summary   string   `json:"summary"`
}

// HistoryTurn is one prior chat turn sent as context
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message             string        `json:"message"`
	EntryID             string        `json:"entry_id"`
	EntryContent        string        `json:"entry_content"`
	EntrySummary        string        `json:"entry_summary"`
	EntryMood           *int          `json:"entry_mood"`
	ConversationHistory []HistoryTurn `json:"conversation_history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Score converts a wire mood score into the 0-10 integer scale.
// Negative values are the backend's "could not score" marker and read as absent.
func Score(v *float64) *int {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return nil
	}
	s := int(math.Floor(*v + 0.5))
	if s > 10 {
		s = 10
	}
	return &s
}

// Timestamp accepts the date shapes the backend has been seen to emit:
// RFC 3339, RFC 1123 (Flask's default), bare dates and epoch milliseconds.
// Anything else decodes to the zero time so one odd row cannot fail a list.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			t.Time = time.Time{}
			return nil
		}
		t.Time = time.UnixMilli(int64(ms))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.Time = time.Time{}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			break
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// FlexibleID reads an id that may arrive as a string or a number.
// Anything else (some backends answer `true`) decodes to "".
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch id := v.(type) {
	case string:
		*f = FlexibleID(id)
	case float64:
		*f = FlexibleID(strconv.FormatFloat(id, 'f', -1, 64))
	default:
		*f = ""
	}
	return nil
}
