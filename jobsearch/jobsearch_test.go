package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFilters(t *testing.T) {
	q := FromFilters(Filters{DatePosted: "all", EmploymentType: "all", WorkMode: "onsite"})
	assert.Equal(t, Query{Query: DefaultQuery, Page: 1, NumPages: 1}, q)

	q = FromFilters(Filters{Query: " golang ", DatePosted: "week", EmploymentType: "FULLTIME", WorkMode: WorkModeRemote})
	assert.Equal(t, Query{
		Query:           "golang",
		Page:            1,
		NumPages:        1,
		DatePosted:      "week",
		EmploymentTypes: "FULLTIME",
		RemoteOnly:      true,
	}, q)
}

func TestQueryValues(t *testing.T) {
	v := Query{Query: "react", Page: 2, RemoteOnly: true, JobRequirements: "no_degree", DatePosted: "all"}.Values()

	assert.Equal(t, "react", v.Get("query"))
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "1", v.Get("num_pages"))
	assert.Equal(t, "true", v.Get("remote_jobs_only"))
	assert.Equal(t, "no_degree", v.Get("job_requirements"))
	assert.False(t, v.Has("date_posted"))
	assert.False(t, v.Has("employment_types"))
}

func TestJobLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", (&Job{City: "Austin", State: "TX"}).Location())
	assert.Equal(t, "Austin", (&Job{City: "Austin"}).Location())
	assert.Equal(t, "TX", (&Job{State: "TX"}).Location())
	assert.Equal(t, "", (&Job{}).Location())
}

func TestClientSearch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, r.Host, r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, DefaultQuery, r.URL.Query().Get("query"))

		io.WriteString(w, `{"status":"OK","data":[{"job_id":"j1","job_title":"Go Developer","employer_name":"Acme","job_city":"Austin","job_state":"TX","job_is_remote":true,"job_required_skills":null}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", NewCache(1<<20, time.Minute), nil)

	resp, err := c.Search(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "j1", resp.Data[0].ID)
	assert.Equal(t, "Acme", resp.Data[0].EmployerName)
	assert.True(t, resp.Data[0].IsRemote)
	assert.Nil(t, resp.Data[0].RequiredSkills)

	_, err = c.Search(context.Background(), Query{Query: DefaultQuery})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "equal queries are served from the cache")
}

func TestClientSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", nil, nil)
	_, err := c.Search(context.Background(), Query{})

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.ErrorTypeProvider, apiErr.Type)
	assert.Equal(t, ErrorMessage, apiErr.Description)
	assert.Contains(t, apiErr.Err.Error(), "403")
}

func TestClientSearchMissingKey(t *testing.T) {
	_, err := NewClient("", "", nil, nil).Search(context.Background(), Query{})

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.ErrorTypeConfiguration, apiErr.Type)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	resp := func(id string) *Response {
		return &Response{Data: []Job{{ID: id}}}
	}
	size := estimateBytes(resp("a"))

	c := NewCache(2*size, 0)
	c.Put("a", resp("a"))
	c.Put("b", resp("b"))

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", resp("c"))

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2*size, c.Bytes())
}

func TestCacheReplaceAndOversize(t *testing.T) {
	c := NewCache(3*estimateBytes(&Response{Data: []Job{{ID: "1"}}}), 0)
	c.Put("k", &Response{Data: []Job{{ID: "1"}}})
	c.Put("k", &Response{Data: []Job{{ID: "2"}}})

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "2", got.Data[0].ID)
	assert.Equal(t, 1, c.Len())

	big := &Response{Data: make([]Job, 10)}
	for i := range big.Data {
		big.Data[i].ID = fmt.Sprintf("job-%d", i)
	}
	c.Put("big", big)
	_, ok = c.Get("big")
	assert.False(t, ok)
}

func TestCacheExpires(t *testing.T) {
	now := time.Now()
	c := NewCache(1<<20, time.Minute)
	c.now = func() time.Time { return now }

	c.Put("k", &Response{})
	_, ok := c.Get("k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
