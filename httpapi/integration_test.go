package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/events"
	"github.com/korylprince/jobmatch-server/jobsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.events = append(p.events, e.Type+":"+e.Status)
	return nil
}

//newDBTestServer serves the full router against the database named by
//JOBMATCH_TEST_SQL_DRIVER and JOBMATCH_TEST_SQL_DSN
func newDBTestServer(t *testing.T) (*testServer, *recordingPublisher) {
	t.Helper()

	driver, dsn := os.Getenv("JOBMATCH_TEST_SQL_DRIVER"), os.Getenv("JOBMATCH_TEST_SQL_DSN")
	if driver == "" || dsn == "" {
		t.Skip("JOBMATCH_TEST_SQL_DRIVER and JOBMATCH_TEST_SQL_DSN not set")
	}

	dialect, err := api.ParseDialect(driver)
	require.NoError(t, err)

	db, err := sql.Open(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, api.Migrate(context.Background(), db, dialect))

	ts := &testServer{searcher: new(fakeSearcher), scorer: new(fakeScorer), streamer: new(fakeStreamer)}
	pub := new(recordingPublisher)

	s := NewMemorySessionStore(time.Hour, nil)
	ts.Server = httptest.NewServer(NewRouter(nil, s, db, dialect, &Services{
		AI:        ts.streamer,
		Jobs:      ts.searcher,
		Scorer:    ts.scorer,
		Football:  fakePredictor{},
		Publisher: pub,
	}))
	t.Cleanup(ts.Close)

	return ts, pub
}

func TestDBUserFlow(t *testing.T) {
	ts, _ := newDBTestServer(t)
	email := fmt.Sprintf("%s@example.com", uuid.NewString())

	resp := ts.do(t, "POST", "/users/", UserCreateRequest{Email: email, Password: "hunter22", Name: "Jane"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created AuthenticateResponse
	decode(t, resp, &created)
	assert.Equal(t, email, created.User.Email)
	assert.NotEmpty(t, created.SessionKey)

	resp = ts.do(t, "POST", "/users/", UserCreateRequest{Email: email, Password: "hunter22", Name: "Jane"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, "POST", "/auth", AuthenticateRequest{Email: email, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, "POST", "/auth", AuthenticateRequest{Email: email, Password: "hunter22"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var auth AuthenticateResponse
	decode(t, resp, &auth)
	ts.key = auth.SessionKey

	resp = ts.do(t, "GET", "/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me api.User
	decode(t, resp, &me)
	assert.Equal(t, created.User.ID, me.ID)
}

func register(t *testing.T, ts *testServer) {
	t.Helper()
	resp := ts.do(t, "POST", "/users/", UserCreateRequest{Email: fmt.Sprintf("%s@example.com", uuid.NewString()), Password: "hunter22", Name: "Jane"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created AuthenticateResponse
	decode(t, resp, &created)
	ts.key = created.SessionKey
}

func TestDBResumeFlow(t *testing.T) {
	ts, _ := newDBTestServer(t)
	register(t, ts)

	resp := ts.do(t, "GET", "/resume", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, "PUT", "/resume", ResumeRequest{Text: "Go developer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resume api.Resume
	decode(t, resp, &resume)
	assert.Equal(t, "resume.txt", resume.FileName)
	assert.Equal(t, "Go developer", resume.Text)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "cv.txt")
	require.NoError(t, err)
	fw.Write([]byte("  Senior Go developer, Kubernetes  \n"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", ts.URL+Prefix+"/resume/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Session-Key", ts.key)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &resume)
	assert.Equal(t, "cv.txt", resume.FileName)
	assert.Equal(t, "Senior Go developer, Kubernetes", resume.Text)

	resp = ts.do(t, "POST", "/jobs/match", MatchRequest{Jobs: []jobsearch.Job{{ID: "a"}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Senior Go developer, Kubernetes", ts.scorer.resume)
}

func TestDBApplicationFlow(t *testing.T) {
	ts, pub := newDBTestServer(t)
	register(t, ts)

	job := &jobsearch.Job{ID: "job-1", Title: "Go Developer", EmployerName: "Acme", City: "Austin", State: "TX", ApplyLink: "https://acme.example/apply"}

	resp := ts.do(t, "POST", "/applications/", ApplicationCreateRequest{Job: job})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var app api.Application
	decode(t, resp, &app)
	assert.Equal(t, api.StatusApplied, app.Status)
	assert.Equal(t, "Acme", app.Company)
	require.NotNil(t, app.JobURL)
	assert.Equal(t, job.ApplyLink, *app.JobURL)

	resp = ts.do(t, "POST", "/applications/", ApplicationCreateRequest{Job: job})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "already tracked", e.Error)
	assert.Equal(t, app.ID, e.DuplicateID)

	resp = ts.do(t, "POST", "/applications/", ApplicationCreateRequest{JobID: "job-2", JobTitle: "SRE", Company: "Initech"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, "POST", "/applications/"+app.ID+"/status", StatusUpdateRequest{Status: "interview"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &app)
	assert.Equal(t, api.StatusInterview, app.Status)

	resp = ts.do(t, "POST", "/applications/"+app.ID+"/status", StatusUpdateRequest{Status: "ghosted"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, "POST", "/applications/"+uuid.NewString()+"/status", StatusUpdateRequest{Status: "offer"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, "GET", "/applications/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list QueryApplicationsResponse
	decode(t, resp, &list)
	assert.Len(t, list.Applications, 2)

	resp = ts.do(t, "GET", "/applications/?status=interview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	require.Len(t, list.Applications, 1)
	assert.Equal(t, app.ID, list.Applications[0].ID)

	resp = ts.do(t, "GET", "/applications/?status=ghosted", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, "GET", "/applications/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats api.ApplicationStats
	decode(t, resp, &stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, []*api.StatsStatus{
		{Status: api.StatusApplied, Count: 1},
		{Status: api.StatusInterview, Count: 1},
		{Status: api.StatusOffer, Count: 0},
		{Status: api.StatusRejected, Count: 0},
	}, stats.Statuses)
	assert.Len(t, stats.Recent, 2)

	assert.Equal(t, []string{
		"application.created:applied",
		"application.created:applied",
		"application.status_changed:interview",
	}, pub.events)
}

func TestDBResumeUploadRejectsUnsupportedType(t *testing.T) {
	ts, _ := newDBTestServer(t)
	register(t, ts)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "cv.png")
	require.NoError(t, err)
	fw.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", ts.URL+Prefix+"/resume/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Session-Key", ts.key)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "Please upload a .txt, .pdf or .docx file", e.Error)
}
