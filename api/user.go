package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

//User represents an authenticatable user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Hash  []byte `json:"-"`
	Name  string `json:"name"`
}

//Validate validates the given User
func (u *User) Validate() error {
	if e, err := mail.ParseAddress(fmt.Sprintf("User <%s>", u.Email)); err != nil || e.Address != u.Email {
		if err != nil {
			return fmt.Errorf("email (%s) must be a valid email: %v", u.Email, err)
		}
		return fmt.Errorf("email (%s) must be a valid email", u.Email)
	}
	return ValidateString("name", u.Name, 255)
}

//Authenticate returns nil if password matches the User's hash
func (u *User) Authenticate(password string) error {
	return bcrypt.CompareHashAndPassword(u.Hash, []byte(password))
}

//CreateUserWithCredentials hashes password and creates a new User, returning its ID
func CreateUserWithCredentials(ctx context.Context, email, password, name string) (id string, err error) {
	if password == "" {
		return "", &Error{Description: "Could not validate password", Type: ErrorTypeUser, Err: errors.New("password cannot be empty")}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", &Error{Description: "Could not bcrypt encrypt password", Type: ErrorTypeServer, Err: err}
	}

	return CreateUser(ctx, &User{Email: email, Hash: hash, Name: name})
}

//CreateUser creates a new User with the given fields (ID is ignored and created) and returns its ID, or an error if one occurred
func CreateUser(ctx context.Context, user *User) (id string, err error) {
	tx := transaction(ctx)

	if err = user.Validate(); err != nil {
		return "", &Error{Description: "Could not validate User", Type: ErrorTypeUser, Err: err}
	}

	dup, err := ReadUserByEmail(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if dup != nil {
		return "", &Error{Description: "Could not insert User", Type: ErrorTypeDuplicate, Err: errors.New("email already registered"), DuplicateID: dup.ID}
	}

	id = uuid.NewString()
	_, err = tx.ExecContext(ctx, "INSERT INTO users(id, email, hash, name) VALUES(?, ?, ?, ?);", id, user.Email, user.Hash, user.Name)
	if err != nil {
		if isDuplicate(err) {
			return "", &Error{Description: "Could not insert User", Type: ErrorTypeDuplicate, Err: errors.New("email already registered")}
		}
		return "", &Error{Description: "Could not insert User", Type: ErrorTypeServer, Err: err}
	}

	return id, nil
}

//ReadUser returns the User with the given id, or nil if none exists
func ReadUser(ctx context.Context, id string) (*User, error) {
	tx := transaction(ctx)

	user := &User{ID: id}

	row := tx.QueryRowContext(ctx, "SELECT email, hash, name FROM users WHERE id=?", id)
	err := row.Scan(&(user.Email), &(user.Hash), &(user.Name))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query User(%s)", id), Type: ErrorTypeServer, Err: err}
	}

	return user, nil
}

//ReadUserByEmail returns the User with the given email, or nil if none exists
func ReadUserByEmail(ctx context.Context, email string) (*User, error) {
	tx := transaction(ctx)

	user := &User{Email: email}

	row := tx.QueryRowContext(ctx, "SELECT id, hash, name FROM users WHERE email=?", email)
	err := row.Scan(&(user.ID), &(user.Hash), &(user.Name))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query UserByEmail(%s)", email), Type: ErrorTypeServer, Err: err}
	}

	return user, nil
}
