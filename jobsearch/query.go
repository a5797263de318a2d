package jobsearch

import (
	"net/url"
	"strconv"
	"strings"
)

// Query defaults
const (
	DefaultQuery    = "software developer"
	DefaultPage     = 1
	DefaultNumPages = 1
)

// filterAll is the filter value meaning "no filter"
const filterAll = "all"

// WorkModeRemote is the work mode that restricts results to remote jobs
const WorkModeRemote = "remote"

// Query is a job search request
type Query struct {
	Query           string `json:"query"`
	Page            int    `json:"page"`
	NumPages        int    `json:"num_pages"`
	DatePosted      string `json:"date_posted,omitempty"`
	EmploymentTypes string `json:"employment_types,omitempty"`
	RemoteOnly      bool   `json:"remote_jobs_only,omitempty"`
	JobRequirements string `json:"job_requirements,omitempty"`
}

// Filters are the job feed filters a Query is built from
type Filters struct {
	Query          string `json:"query"`
	DatePosted     string `json:"date_posted"`
	EmploymentType string `json:"employment_type"`
	WorkMode       string `json:"work_mode"`
}

// FromFilters returns the Query for the given feed filters. "all" means no filter.
func FromFilters(f Filters) Query {
	q := Query{Query: f.Query, NumPages: DefaultNumPages}
	if f.DatePosted != "" && f.DatePosted != filterAll {
		q.DatePosted = f.DatePosted
	}
	if f.EmploymentType != "" && f.EmploymentType != filterAll {
		q.EmploymentTypes = f.EmploymentType
	}
	if f.WorkMode == WorkModeRemote {
		q.RemoteOnly = true
	}
	return q.Normalize()
}

// Normalize returns q with defaults applied and "all" filters cleared
func (q Query) Normalize() Query {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		q.Query = DefaultQuery
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.NumPages < 1 {
		q.NumPages = DefaultNumPages
	}
	if q.DatePosted == filterAll {
		q.DatePosted = ""
	}
	if q.EmploymentTypes == filterAll {
		q.EmploymentTypes = ""
	}
	return q
}

// Values returns the provider query parameters for q
func (q Query) Values() url.Values {
	q = q.Normalize()

	v := url.Values{}
	v.Set("query", q.Query)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("num_pages", strconv.Itoa(q.NumPages))
	if q.DatePosted != "" {
		v.Set("date_posted", q.DatePosted)
	}
	if q.EmploymentTypes != "" {
		v.Set("employment_types", q.EmploymentTypes)
	}
	if q.RemoteOnly {
		v.Set("remote_jobs_only", "true")
	}
	if q.JobRequirements != "" {
		v.Set("job_requirements", q.JobRequirements)
	}
	return v
}

// Key returns a stable cache key for q
func (q Query) Key() string {
	return q.Values().Encode()
}
