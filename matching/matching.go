// Package matching scores job listings against a resume with an AI model.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"github.com/korylprince/jobmatch-server/jobsearch"
)

// Limits on what is sent to the model
const (
	MaxJobs           = 20
	MaxResumeChars    = 3000
	MaxDescriptionLen = 500
)

// NoResumeExplanation explains the zero scores returned when no resume is available
const NoResumeExplanation = "No resume uploaded yet. Upload your resume to see match scores."

// Score levels used by FilterByScore
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
)

// BestMatchThreshold is the score a job must exceed to be a best match
const BestMatchThreshold = 40

const systemPrompt = `You are a job matching expert. Score each job against the candidate's resume from 0-100. Return ONLY a valid JSON array. Each element must have: job_id (string), score (integer 0-100), matched_skills (string array of 2-5 matched skills), explanation (1 sentence explaining the match). Be realistic - only high scores for strong alignment.`

// Score is the relevance of one job to a resume
type Score struct {
	JobID         string   `json:"job_id"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Explanation   string   `json:"explanation"`
}

// Scorer scores jobs against resumes
type Scorer struct {
	caller chatbot.ToolCaller
}

// NewScorer returns a Scorer using caller for model calls
func NewScorer(caller chatbot.ToolCaller) *Scorer {
	return &Scorer{caller: caller}
}

// Score returns scores for jobs against resumeText.
// An empty job list returns no scores and an empty resume returns zero scores, neither calling the model.
// At most MaxJobs jobs are scored.
func (s *Scorer) Score(ctx context.Context, resumeText string, jobs []jobsearch.Job) ([]Score, error) {
	if len(jobs) == 0 {
		return make([]Score, 0), nil
	}

	if strings.TrimSpace(resumeText) == "" {
		scores := make([]Score, len(jobs))
		for i, job := range jobs {
			scores[i] = Score{JobID: job.ID, Score: 0, MatchedSkills: make([]string, 0), Explanation: NoResumeExplanation}
		}
		return scores, nil
	}

	if len(jobs) > MaxJobs {
		jobs = jobs[:MaxJobs]
	}

	messages := []chatbot.Message{
		chatbot.TextMessage(chatbot.RoleSystem, systemPrompt),
		chatbot.TextMessage(chatbot.RoleUser, Prompt(resumeText, jobs)),
	}

	var out struct {
		Scores []Score `json:"scores"`
	}
	if err := s.caller.CallTool(ctx, messages, chatbot.MatchScoresTool(), &out); err != nil {
		return nil, err
	}

	return order(jobs, out.Scores), nil
}

// Prompt returns the user prompt describing resumeText and jobs
func Prompt(resumeText string, jobs []jobsearch.Job) string {
	summaries := make([]string, len(jobs))
	for i, job := range jobs {
		summaries[i] = fmt.Sprintf("JOB %d (ID: %s): %s at %s. Description: %s",
			i+1, job.ID, job.Title, job.EmployerName, truncate(job.Description, MaxDescriptionLen),
		)
	}
	return fmt.Sprintf("RESUME:\n%s\n\nJOBS:\n%s", truncate(resumeText, MaxResumeChars), strings.Join(summaries, "\n\n"))
}

// truncate returns the first n characters of s
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// order returns scores in job order with scores clamped to 0-100.
// Scores for unknown jobs are dropped and duplicates keep the first.
func order(jobs []jobsearch.Job, scores []Score) []Score {
	byID := make(map[string]Score, len(scores))
	for _, s := range scores {
		if _, ok := byID[s.JobID]; ok {
			continue
		}
		byID[s.JobID] = s
	}

	ordered := make([]Score, 0, len(scores))
	for _, job := range jobs {
		s, ok := byID[job.ID]
		if !ok {
			continue
		}
		if s.Score < 0 {
			s.Score = 0
		} else if s.Score > 100 {
			s.Score = 100
		}
		if s.MatchedSkills == nil {
			s.MatchedSkills = make([]string, 0)
		}
		ordered = append(ordered, s)
		delete(byID, job.ID)
	}
	return ordered
}

// ScoreMap indexes scores by job id
func ScoreMap(scores []Score) map[string]Score {
	m := make(map[string]Score, len(scores))
	for _, s := range scores {
		m[s.JobID] = s
	}
	return m
}

// FilterByScore returns the jobs at level: LevelHigh keeps scores above 70, LevelMedium keeps scores of at least 40.
// Any other level keeps every job. Unscored jobs count as 0.
func FilterByScore(jobs []jobsearch.Job, scores map[string]Score, level string) []jobsearch.Job {
	filtered := make([]jobsearch.Job, 0, len(jobs))
	for _, job := range jobs {
		score := scores[job.ID].Score
		switch level {
		case LevelHigh:
			if score <= 70 {
				continue
			}
		case LevelMedium:
			if score < 40 {
				continue
			}
		}
		filtered = append(filtered, job)
	}
	return filtered
}

// BestMatches returns up to n jobs scoring above BestMatchThreshold, highest first.
// Ties keep their original order.
func BestMatches(jobs []jobsearch.Job, scores map[string]Score, n int) []jobsearch.Job {
	best := make([]jobsearch.Job, 0)
	for _, job := range jobs {
		if scores[job.ID].Score > BestMatchThreshold {
			best = append(best, job)
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return scores[best[i].ID].Score > scores[best[j].ID].Score
	})

	if n >= 0 && len(best) > n {
		best = best[:n]
	}
	return best
}

// ApplicationFromJob returns the Application tracking job
func ApplicationFromJob(job jobsearch.Job) *api.Application {
	app := &api.Application{
		JobID:    job.ID,
		JobTitle: job.Title,
		Company:  job.EmployerName,
		Status:   api.StatusApplied,
	}
	if job.ApplyLink != "" {
		link := job.ApplyLink
		app.JobURL = &link
	}
	if loc := job.Location(); loc != "" {
		app.Location = &loc
	}
	return app
}
