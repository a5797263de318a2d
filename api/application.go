package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//Application is a job application tracked by a User. (UserID, JobID) is unique.
type Application struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	JobID     string            `json:"job_id"`
	JobTitle  string            `json:"job_title"`
	Company   string            `json:"company"`
	JobURL    *string           `json:"job_url"`
	Location  *string           `json:"location"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

//Validate validates the given Application
func (a *Application) Validate() error {
	if err := ValidateString("job_id", a.JobID, 255); err != nil {
		return err
	}
	if err := ValidateString("job_title", a.JobTitle, 500); err != nil {
		return err
	}
	if err := ValidateString("company", a.Company, 255); err != nil {
		return err
	}
	if err := ValidateOptionalString("job_url", a.JobURL, 2048); err != nil {
		return err
	}
	if err := ValidateOptionalString("location", a.Location, 255); err != nil {
		return err
	}
	if !a.Status.Valid() {
		return fmt.Errorf("status (%s) must be one of %v", a.Status, ApplicationStatuses)
	}
	return nil
}

const applicationColumns = "id, user_id, job_id, job_title, company, job_url, location, status, applied_at, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*Application, error) {
	a := new(Application)
	var jobURL, location sql.NullString
	var status string

	err := row.Scan(&(a.ID), &(a.UserID), &(a.JobID), &(a.JobTitle), &(a.Company), &jobURL, &location, &status,
		&(a.AppliedAt), &(a.CreatedAt), &(a.UpdatedAt))
	if err != nil {
		return nil, err
	}

	if jobURL.Valid {
		a.JobURL = &jobURL.String
	}
	if location.Valid {
		a.Location = &location.String
	}
	a.Status = ApplicationStatus(status)

	return a, nil
}

//CreateApplication tracks a new Application for app.UserID and returns its ID.
//If the User already tracks app.JobID, an ErrorTypeDuplicate error carrying the existing ID is returned.
func CreateApplication(ctx context.Context, app *Application) (id string, err error) {
	tx := transaction(ctx)

	if app.Status == "" {
		app.Status = StatusApplied
	}
	if err = app.Validate(); err != nil {
		return "", &Error{Description: "Could not validate Application", Type: ErrorTypeUser, Err: err}
	}

	dup, err := ReadApplicationByJob(ctx, app.UserID, app.JobID)
	if err != nil {
		return "", err
	}
	if dup != nil {
		return "", &Error{Description: "Could not insert Application", Type: ErrorTypeDuplicate, Err: errors.New("already tracked"), DuplicateID: dup.ID}
	}

	now := time.Now().UTC()
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}

	id = uuid.NewString()
	_, err = tx.ExecContext(ctx, "INSERT INTO applications("+applicationColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
		id, app.UserID, app.JobID, app.JobTitle, app.Company, app.JobURL, app.Location, string(app.Status), app.AppliedAt, now, now,
	)
	if err != nil {
		if isDuplicate(err) {
			return "", &Error{Description: "Could not insert Application", Type: ErrorTypeDuplicate, Err: errors.New("already tracked")}
		}
		return "", &Error{Description: "Could not insert Application", Type: ErrorTypeServer, Err: err}
	}

	return id, nil
}

//ReadApplication returns the Application with the given id owned by userID, or nil if none exists
func ReadApplication(ctx context.Context, userID, id string) (*Application, error) {
	tx := transaction(ctx)

	row := tx.QueryRowContext(ctx, "SELECT "+applicationColumns+" FROM applications WHERE id=? AND user_id=?", id, userID)
	a, err := scanApplication(row)

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Application(%s)", id), Type: ErrorTypeServer, Err: err}
	}

	return a, nil
}

//ReadApplicationByJob returns the Application for the given User and job id, or nil if none exists
func ReadApplicationByJob(ctx context.Context, userID, jobID string) (*Application, error) {
	tx := transaction(ctx)

	row := tx.QueryRowContext(ctx, "SELECT "+applicationColumns+" FROM applications WHERE user_id=? AND job_id=?", userID, jobID)
	a, err := scanApplication(row)

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Application for job %s", jobID), Type: ErrorTypeServer, Err: err}
	}

	return a, nil
}

//QueryApplications returns the Applications for the given User, most recently applied first.
//If status is not empty, only Applications with that status are returned.
func QueryApplications(ctx context.Context, userID string, status ApplicationStatus) ([]*Application, error) {
	tx := transaction(ctx)

	query := "SELECT " + applicationColumns + " FROM applications WHERE user_id=?"
	args := []interface{}{userID}
	if status != "" {
		if !status.Valid() {
			return nil, &Error{Description: "Could not validate Application status", Type: ErrorTypeUser, Err: fmt.Errorf("status (%s) must be one of %v", status, ApplicationStatuses)}
		}
		query += " AND status=?"
		args = append(args, string(status))
	}

	rows, err := tx.QueryContext(ctx, query+" ORDER BY applied_at DESC", args...)
	if err != nil {
		return nil, &Error{Description: "Could not query Applications", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	apps := make([]*Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, &Error{Description: "Could not scan Application", Type: ErrorTypeServer, Err: err}
		}
		apps = append(apps, a)
	}

	if err = rows.Err(); err != nil {
		return nil, &Error{Description: "Could not scan Applications", Type: ErrorTypeServer, Err: err}
	}

	return apps, nil
}

//UpdateApplicationStatus moves the Application with the given id owned by userID to status
func UpdateApplicationStatus(ctx context.Context, userID, id string, status ApplicationStatus) error {
	tx := transaction(ctx)

	if !status.Valid() {
		return &Error{Description: "Could not validate Application status", Type: ErrorTypeUser, Err: fmt.Errorf("status (%s) must be one of %v", status, ApplicationStatuses)}
	}

	app, err := ReadApplication(ctx, userID, id)
	if err != nil {
		return err
	}
	if app == nil {
		return &Error{Description: fmt.Sprintf("Could not find Application(%s)", id), Type: ErrorTypeNotFound}
	}

	_, err = tx.ExecContext(ctx, "UPDATE applications SET status=?, updated_at=? WHERE id=? AND user_id=?;", string(status), time.Now().UTC(), id, userID)
	if err != nil {
		return &Error{Description: fmt.Sprintf("Could not update Application(%s)", id), Type: ErrorTypeServer, Err: err}
	}

	return nil
}
