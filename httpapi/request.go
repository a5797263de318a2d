package httpapi

import (
	"github.com/korylprince/jobmatch-server/chatstream"
	"github.com/korylprince/jobmatch-server/football"
	"github.com/korylprince/jobmatch-server/jobsearch"
)

//UserCreateRequest is a request to register a new User
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

//AuthenticateRequest is an email/password authentication request
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

//ResumeRequest replaces the User's resume text
type ResumeRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"resume_text"`
}

//MatchRequest scores Jobs against a resume. If ResumeText is nil, the User's stored resume is used.
type MatchRequest struct {
	Jobs       []jobsearch.Job `json:"jobs"`
	ResumeText *string         `json:"resume_text"`
}

//ApplicationCreateRequest tracks an application. If Job is set, the other fields are taken from it.
type ApplicationCreateRequest struct {
	Job      *jobsearch.Job `json:"job"`
	JobID    string         `json:"job_id"`
	JobTitle string         `json:"job_title"`
	Company  string         `json:"company"`
	JobURL   *string        `json:"job_url"`
	Location *string        `json:"location"`
}

//StatusUpdateRequest moves an application to a new status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

//ChatRequest is the conversation sent to the chat endpoints
type ChatRequest struct {
	Messages []chatstream.Message `json:"messages"`
}

//TeamSearchRequest searches for football teams by name
type TeamSearchRequest struct {
	Name string `json:"name"`
}

//PredictRequest asks for a match prediction between two teams
type PredictRequest struct {
	Team1 football.TeamRef `json:"team1"`
	Team2 football.TeamRef `json:"team2"`
}
