package api

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//MaxResumeBytes is the largest resume file or text accepted
const MaxResumeBytes = 5 * 1024 * 1024

//Resume is the resume text stored for a User. A User has at most one Resume.
type Resume struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FileName  string    `json:"file_name"`
	Text      string    `json:"resume_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

//Validate validates the given Resume
func (r *Resume) Validate() error {
	if err := ValidateString("file_name", r.FileName, 255); err != nil {
		return err
	}
	return ValidateString("resume_text", r.Text, MaxResumeBytes)
}

//ReadResume returns the Resume for the given User, or nil if none has been uploaded
func ReadResume(ctx context.Context, userID string) (*Resume, error) {
	tx := transaction(ctx)

	r := &Resume{UserID: userID}

	row := tx.QueryRowContext(ctx, "SELECT id, file_name, resume_text, created_at, updated_at FROM resumes WHERE user_id=?", userID)
	err := row.Scan(&(r.ID), &(r.FileName), &(r.Text), &(r.CreatedAt), &(r.UpdatedAt))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Resume for User(%s)", userID), Type: ErrorTypeServer, Err: err}
	}

	return r, nil
}

//ResumeText returns the current resume text for the given User, or an empty string if none has been uploaded
func ResumeText(ctx context.Context, userID string) (string, error) {
	r, err := ReadResume(ctx, userID)
	if err != nil || r == nil {
		return "", err
	}
	return r.Text, nil
}

//UpsertResume replaces the User's Resume with the given text, creating it if needed
func UpsertResume(ctx context.Context, userID, fileName, text string) (*Resume, error) {
	tx := transaction(ctx)

	r := &Resume{UserID: userID, FileName: fileName, Text: text}
	if err := r.Validate(); err != nil {
		return nil, &Error{Description: "Could not validate Resume", Type: ErrorTypeUser, Err: err}
	}

	existing, err := ReadResume(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if existing != nil {
		_, err = tx.ExecContext(ctx, "UPDATE resumes SET file_name=?, resume_text=?, updated_at=? WHERE user_id=?;", fileName, text, now, userID)
		if err != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not update Resume for User(%s)", userID), Type: ErrorTypeServer, Err: err}
		}
	} else {
		_, err = tx.ExecContext(ctx, "INSERT INTO resumes(id, user_id, file_name, resume_text, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?);",
			uuid.NewString(), userID, fileName, text, now, now,
		)
		if err != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not insert Resume for User(%s)", userID), Type: ErrorTypeServer, Err: err}
		}
	}

	return ReadResume(ctx, userID)
}
