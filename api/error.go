package api

import "fmt"

//ErrorType are APIError types
type ErrorType int

//ErrorTypes
const (
	ErrorTypeUser ErrorType = iota
	ErrorTypeServer
	ErrorTypeDuplicate
	ErrorTypeNotFound
	ErrorTypeRateLimited
	ErrorTypeQuotaExhausted
	ErrorTypeProvider
	ErrorTypeConfiguration
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUser:           "User Error",
	ErrorTypeServer:         "Server Error",
	ErrorTypeDuplicate:      "Duplicate Error",
	ErrorTypeNotFound:       "Not Found Error",
	ErrorTypeRateLimited:    "Rate Limit Error",
	ErrorTypeQuotaExhausted: "Quota Error",
	ErrorTypeProvider:       "Provider Error",
	ErrorTypeConfiguration:  "Configuration Error",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

//Error wraps errors in the API. DuplicateID is set for ErrorTypeDuplicate when the existing record is known.
type Error struct {
	Description string
	Type        ErrorType
	Err         error
	DuplicateID string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Description)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Description, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
