package api

import (
	"context"
	"fmt"
)

//RecentApplications is the number of Applications included in ApplicationStats
const RecentApplications = 5

//StatsStatus is the number of a User's Applications with a Status
type StatsStatus struct {
	Status ApplicationStatus `json:"status"`
	Count  int               `json:"count"`
}

//ApplicationStats summarizes a User's Applications
type ApplicationStats struct {
	Total    int            `json:"total"`
	Statuses []*StatsStatus `json:"statuses"`
	Recent   []*Application `json:"recent"`
}

//ReadApplicationStats returns ApplicationStats for the given User, or an error if one occurred.
//Statuses lists every ApplicationStatus in pipeline order, including those with no Applications.
func ReadApplicationStats(ctx context.Context, userID string) (*ApplicationStats, error) {
	tx := transaction(ctx)

	counts := make(map[ApplicationStatus]int)

	rows, err := tx.QueryContext(ctx, "SELECT status, COUNT(id) FROM applications WHERE user_id=? GROUP BY status;", userID)
	if err != nil {
		return nil, &Error{Description: "Could not query ApplicationStats.Statuses", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if sErr := rows.Scan(&status, &count); sErr != nil {
			return nil, &Error{Description: "Could not scan ApplicationStats.Statuses row", Type: ErrorTypeServer, Err: sErr}
		}
		counts[ApplicationStatus(status)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, &Error{Description: "Could not scan ApplicationStats.Statuses rows", Type: ErrorTypeServer, Err: err}
	}

	s := &ApplicationStats{Statuses: make([]*StatsStatus, 0, len(ApplicationStatuses))}
	for _, status := range ApplicationStatuses {
		s.Statuses = append(s.Statuses, &StatsStatus{Status: status, Count: counts[status]})
		s.Total += counts[status]
	}

	//Recent
	rows, err = tx.QueryContext(ctx, fmt.Sprintf("SELECT "+applicationColumns+" FROM applications WHERE user_id=? ORDER BY applied_at DESC LIMIT %d;", RecentApplications), userID)
	if err != nil {
		return nil, &Error{Description: "Could not query ApplicationStats.Recent", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	s.Recent = make([]*Application, 0, RecentApplications)
	for rows.Next() {
		a, sErr := scanApplication(rows)
		if sErr != nil {
			return nil, &Error{Description: "Could not scan ApplicationStats.Recent row", Type: ErrorTypeServer, Err: sErr}
		}
		s.Recent = append(s.Recent, a)
	}

	if err = rows.Err(); err != nil {
		return nil, &Error{Description: "Could not scan ApplicationStats.Recent rows", Type: ErrorTypeServer, Err: err}
	}

	return s, nil
}
