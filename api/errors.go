package api

import (
	"encoding/json"
	"fmt"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

// GenericErrorMessage is shown when a rejected mutation carries no readable
// message body.
const GenericErrorMessage = "Something went wrong. Please try again."

// StatusError is a server-rejected request with the message extracted from
// the response body.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// ValidationError is raised client-side before any request is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "api: invalid " + e.Field + ": " + e.Reason
}

func requireField(field string, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	return nil
}

func (r Response) Ok() bool {
	return r.StatusCode/100 == 2
}

// Err maps the response status to an error: nil for success,
// yozie.ErrUnauthorized for 401 and a StatusError carrying the server's own
// message otherwise.
func (r Response) Err() error {
	if r.Ok() {
		return nil
	}
	if r.StatusCode == fiber.StatusUnauthorized {
		return yozie.ErrUnauthorized
	}
	return &StatusError{StatusCode: r.StatusCode, Message: serverMessage(r.Body)}
}

func (r Response) Decode(v interface{}) error {
	if err := r.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("response unmarshal: %w", err)
	}
	return nil
}

// serverMessage extracts the human-readable message from an error body. The
// backend uses both "message" and "error_message" depending on the endpoint.
func serverMessage(body []byte) string {
	var response struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return GenericErrorMessage
	}
	switch {
	case response.Message != "":
		return response.Message
	case response.ErrorMessage != "":
		return response.ErrorMessage
	default:
		return GenericErrorMessage
	}
}
