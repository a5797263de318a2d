package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"github.com/korylprince/jobmatch-server/chatstream"
	"github.com/korylprince/jobmatch-server/football"
	"github.com/korylprince/jobmatch-server/jobsearch"
	"github.com/korylprince/jobmatch-server/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamer struct {
	stream string
	err    error

	mu       sync.Mutex
	messages []chatbot.Message
}

func (f *fakeStreamer) ChatStream(ctx context.Context, messages []chatbot.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	f.messages = messages
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.stream)), nil
}

func (f *fakeStreamer) received() []chatbot.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages
}

type fakeSearcher struct {
	query jobsearch.Query
	resp  *jobsearch.Response
}

func (f *fakeSearcher) Search(ctx context.Context, q jobsearch.Query) (*jobsearch.Response, error) {
	f.query = q
	return f.resp, nil
}

type fakeScorer struct {
	called bool
	resume string
}

func (f *fakeScorer) Score(ctx context.Context, resumeText string, jobs []jobsearch.Job) ([]matching.Score, error) {
	f.called = true
	f.resume = resumeText
	scores := make([]matching.Score, len(jobs))
	for i, j := range jobs {
		scores[i] = matching.Score{JobID: j.ID, Score: 80 - i*10, MatchedSkills: []string{"Go"}, Explanation: "Strong fit"}
	}
	return scores, nil
}

type fakePredictor struct{}

func (fakePredictor) SearchTeams(ctx context.Context, name string) ([]football.Team, error) {
	return []football.Team{{ID: 42, Name: name}}, nil
}

func (fakePredictor) Predict(ctx context.Context, team1, team2 football.TeamRef) (*football.Prediction, error) {
	if team1.ID == 0 || team2.ID == 0 {
		return nil, &api.Error{Description: "Both team IDs required", Type: api.ErrorTypeUser}
	}
	return &football.Prediction{Winner: team1.Name}, nil
}

type testServer struct {
	*httptest.Server
	key      string
	streamer *fakeStreamer
	searcher *fakeSearcher
	scorer   *fakeScorer
}

//newTestServer serves the router without a database, so only session authenticated routes are usable
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		streamer: &fakeStreamer{stream: ": OPENROUTER PROCESSING\n\n" +
			`data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n\n" +
			`data: {"choices":[{"delta":{"content":"lo ✓"}}]}` + "\n\n" +
			"data: [DONE]\n\n"},
		searcher: &fakeSearcher{resp: &jobsearch.Response{Status: "OK", Data: []jobsearch.Job{{ID: "j1", Title: "Go Developer"}}}},
		scorer:   new(fakeScorer),
	}

	s := NewMemorySessionStore(time.Hour, nil)
	key, err := s.Create("user-1", "jane@example.com")
	require.NoError(t, err)
	ts.key = key

	ts.Server = httptest.NewServer(NewRouter(nil, s, nil, api.DialectMySQL, &Services{
		AI:       ts.streamer,
		Jobs:     ts.searcher,
		Scorer:   ts.scorer,
		Football: fakePredictor{},
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, ts.URL+Prefix+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+ts.key)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	for _, key := range []string{"", "wrong"} {
		req, _ := http.NewRequest("POST", ts.URL+Prefix+"/jobs/search", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Session-Key", key)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var e ErrorResponse
		decode(t, resp, &e)
		assert.Equal(t, http.StatusUnauthorized, e.Code)
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "GET", "/devices/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestReadStatuses(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "GET", "/statuses/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ReadStatusesResponse
	decode(t, resp, &body)
	assert.Equal(t, api.ApplicationStatuses, body.Statuses)
}

func TestSearchJobs(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/jobs/search", jobsearch.Query{Query: "golang", RemoteOnly: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body jobsearch.Response
	decode(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "j1", body.Data[0].ID)
	assert.Equal(t, "golang", ts.searcher.query.Query)
	assert.True(t, ts.searcher.query.RemoteOnly)
}

func TestSearchJobsContentType(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest("POST", ts.URL+Prefix+"/jobs/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Session-Key", ts.key)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatchJobsWithResumeText(t *testing.T) {
	ts := newTestServer(t)
	text := "Go developer with 5 years of experience"
	resp := ts.do(t, "POST", "/jobs/match", MatchRequest{
		Jobs:       []jobsearch.Job{{ID: "a"}, {ID: "b"}},
		ResumeText: &text,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MatchResponse
	decode(t, resp, &body)
	require.Len(t, body.Scores, 2)
	assert.Equal(t, "a", body.Scores[0].JobID)
	assert.Equal(t, 80, body.Scores[0].Score)
	assert.Equal(t, text, ts.scorer.resume)
}

func TestMatchJobsEmpty(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/jobs/match", MatchRequest{Jobs: nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MatchResponse
	decode(t, resp, &body)
	assert.NotNil(t, body.Scores)
	assert.Empty(t, body.Scores)
	assert.False(t, ts.scorer.called)
}

func TestChatRelaysEventStream(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/chat", ChatRequest{Messages: []chatstream.Message{{Role: chatstream.RoleUser, Content: "Hi"}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, ts.streamer.stream, string(body))

	received := ts.streamer.received()
	require.Len(t, received, 2)
	assert.Equal(t, chatbot.RoleSystem, received[0].Role)
	assert.Equal(t, "Hi", *received[1].Content)
}

func TestChatRejectsInvalidHistory(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/chat", ChatRequest{Messages: []chatstream.Message{{Role: chatstream.RoleAssistant, Content: "Hi"}}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "Last message must be a non-empty user message", e.Error)
}

func TestChatSession(t *testing.T) {
	ts := newTestServer(t)

	var updates []string
	sess := chatstream.NewSession(ts.URL+Prefix+"/chat", ts.key, ts.Client(), nil)
	sess.OnUpdate = func(m chatstream.Message) { updates = append(updates, m.Content) }

	require.NoError(t, sess.Send(context.Background(), "Hi"))

	assert.Equal(t, []chatstream.Message{
		{Role: chatstream.RoleUser, Content: "Hi"},
		{Role: chatstream.RoleAssistant, Content: "Hello ✓"},
	}, sess.Messages())
	assert.Equal(t, []string{"Hel", "Hello ✓"}, updates)
	assert.False(t, sess.InFlight())
}

func TestChatSessionProviderError(t *testing.T) {
	ts := newTestServer(t)
	ts.streamer.err = &api.Error{Description: chatbot.RateLimitedMessage, Type: api.ErrorTypeRateLimited, Err: errors.New("429")}

	sess := chatstream.NewSession(ts.URL+Prefix+"/chat", ts.key, ts.Client(), nil)
	err := sess.Send(context.Background(), "Hi")

	var te *chatstream.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusTooManyRequests, te.Status)

	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chatstream.ErrorPrefix+chatbot.RateLimitedMessage, msgs[1].Content)
}

func TestChatWebSocket(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + Prefix + "/chat/ws?session_key=" + ts.key
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Messages: []chatstream.Message{{Role: chatstream.RoleUser, Content: "Hi"}}}))

	var text string
	for {
		var msg chatbot.ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != chatbot.MessageTypeText {
			assert.Equal(t, chatbot.MessageTypeDone, msg.Type)
			break
		}
		text += msg.Content
	}
	assert.Equal(t, "Hello ✓", text)
}

func TestChatWebSocketUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + Prefix + "/chat/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFootball(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "POST", "/football/teams", TeamSearchRequest{Name: "Arsenal"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var teams TeamSearchResponse
	decode(t, resp, &teams)
	assert.Equal(t, []football.Team{{ID: 42, Name: "Arsenal"}}, teams.Teams)

	resp = ts.do(t, "POST", "/football/predict", PredictRequest{Team1: football.TeamRef{ID: 42, Name: "Arsenal"}, Team2: football.TeamRef{ID: 49, Name: "Chelsea"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prediction football.Prediction
	decode(t, resp, &prediction)
	assert.Equal(t, "Arsenal", prediction.Winner)

	resp = ts.do(t, "POST", "/football/predict", PredictRequest{Team1: football.TeamRef{ID: 42}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "Both team IDs required", e.Error)
}
