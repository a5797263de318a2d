package api

//ApplicationStatus is a stage in the application pipeline
type ApplicationStatus string

//ApplicationStatuses
const (
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

//ApplicationStatuses lists the valid statuses in pipeline order
var ApplicationStatuses = []ApplicationStatus{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

//Valid reports whether s is one of ApplicationStatuses
func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

//ReadStatuses returns the allowed ApplicationStatuses
func ReadStatuses() []ApplicationStatus {
	statuses := make([]ApplicationStatus, len(ApplicationStatuses))
	copy(statuses, ApplicationStatuses)
	return statuses
}
