package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrNotAuthenticated
	}
	return string(s), nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, token staticToken) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, token, zap.NewNop().Sugar())
}

func TestListJournals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/journals", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Write([]byte(`[
			{"id":"a","date":"Tue, 07 Jan 2025 10:00:00 GMT","text":"good day","mood_score":8,"summary":"bright"},
			{"id":"b","date":"2025-01-05T09:30:00Z","text":"meh","mood_score":null,"summary":"","title":"Sunday"},
			{"id":"c","text":"no date","mood_score":6.6,"summary":"ok"}
		]`))
	}, "tok")

	journals, err := c.ListJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 3)

	assert.Equal(t, "a", journals[0].ID)
	assert.True(t, time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC).Equal(journals[0].Date.Time))
	assert.Equal(t, 8, *Score(journals[0].MoodScore))

	assert.Equal(t, "Sunday", journals[1].Title)
	assert.Nil(t, Score(journals[1].MoodScore))

	assert.True(t, journals[2].Date.IsZero())
	assert.Equal(t, 7, *Score(journals[2].MoodScore))
}

func TestScore(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	assert.Nil(t, Score(nil))
	assert.Nil(t, Score(f(-1)))
	assert.Equal(t, 0, *Score(f(0)))
	assert.Equal(t, 5, *Score(f(4.5)))
	assert.Equal(t, 10, *Score(f(12)))
}

func TestNotAuthenticatedSkipsNetwork(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, "")

	_, err := c.ListJournals(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSaveJournal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/save", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "today was fine", body["journal"])
		assert.Equal(t, float64(6), body["mood_score"])
		assert.Equal(t, "fine", body["summary"])

		w.Write([]byte(`{"id":"new-1","message":"Journal entry saved successfully"}`))
	}, "tok")

	resp, err := c.SaveJournal(context.Background(), SaveRequest{Journal: "today was fine", MoodScore: 6, Summary: "fine"})
	require.NoError(t, err)
	assert.Equal(t, FlexibleID("new-1"), resp.ID)
}

func TestSaveJournalServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Missing required fields"}`))
	}, "tok")

	_, err := c.SaveJournal(context.Background(), SaveRequest{Journal: "x"})
	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.Equal(t, "Missing required fields", ServerMessage(err))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadRequest, de.Status)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "long walk", body["journal"])
		w.Write([]byte(`{"mood_score":7,"summary":"**Calm** evening"}`))
	}, "tok")

	resp, err := c.Generate(context.Background(), "long walk")
	require.NoError(t, err)
	assert.Equal(t, 7, *Score(resp.MoodScore))
	assert.Equal(t, "**Calm** evening", resp.Summary)
}

func TestChatSendsEmptyHistoryArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["conversation_history"]))
		assert.JSONEq(t, `null`, string(body["entry_mood"]))
		assert.JSONEq(t, `"e1"`, string(body["entry_id"]))
		w.Write([]byte(`{"response":"Tell me more."}`))
	}, "tok")

	reply, err := c.Chat(context.Background(), ChatRequest{Message: "hi", EntryID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, "Tell me more.", reply)
}

func TestDeleteJournal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/journals/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}, "tok")

	err := c.DeleteJournal(context.Background(), "a/b")
	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.Empty(t, ServerMessage(err))
}

func TestTransportFailure(t *testing.T) {
	c := New("http://127.0.0.1:1", staticToken("tok"), zap.NewNop().Sugar(), WithRateLimit(100, 1))
	err := c.DeleteJournal(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
}

func TestFlexibleID(t *testing.T) {
	var r SaveResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id":42}`), &r))
	assert.Equal(t, FlexibleID("42"), r.ID)
	require.NoError(t, json.Unmarshal([]byte(`{"id":true}`), &r))
	assert.Equal(t, FlexibleID(""), r.ID)
}

func TestTimestampEpochMillis(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`1736244000000`), &ts))
	assert.Equal(t, int64(1736244000), ts.Unix())

	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.True(t, ts.IsZero())
}

func TestListJournalsToleratesUnknownDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"a","date":"2025-04-01","text":"fine","mood_score":6,"summary":""},
			{"id":"b","date":"04/02/2025","text":"odd date","mood_score":4,"summary":""}
		]`))
	}, "tok")

	journals, err := c.ListJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 2)
	assert.True(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Equal(journals[0].Date.Time))
	assert.True(t, journals[1].Date.IsZero())
	assert.Equal(t, "odd date", journals[1].Text)
}
