package jobsearch

// Highlights are the structured highlights of a Job
type Highlights struct {
	Qualifications   []string `json:"Qualifications,omitempty"`
	Responsibilities []string `json:"Responsibilities,omitempty"`
}

// Job is one job listing as returned by the job search provider
type Job struct {
	ID             string      `json:"job_id"`
	Title          string      `json:"job_title"`
	EmployerName   string      `json:"employer_name"`
	EmployerLogo   *string     `json:"employer_logo"`
	City           string      `json:"job_city"`
	State          string      `json:"job_state"`
	Country        string      `json:"job_country"`
	Description    string      `json:"job_description"`
	EmploymentType string      `json:"job_employment_type"`
	ApplyLink      string      `json:"job_apply_link"`
	IsRemote       bool        `json:"job_is_remote"`
	PostedAt       string      `json:"job_posted_at_datetime_utc"`
	RequiredSkills []string    `json:"job_required_skills"`
	Highlights     *Highlights `json:"job_highlights,omitempty"`
}

// Location returns the city and state of the Job joined by ", ", skipping empty parts
func (j *Job) Location() string {
	switch {
	case j.City != "" && j.State != "":
		return j.City + ", " + j.State
	case j.City != "":
		return j.City
	}
	return j.State
}
