package api

import (
	"encoding/json"
	"io"

	goerrors "github.com/goliatone/go-errors"
)

type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// validationError decodes a 422 body into a rich error carrying the
// field-level messages as metadata.
func validationError(body io.Reader) error {
	var payload validationBody
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return goerrors.New("server rejected the request", goerrors.CategoryValidation).
			WithTextCode("VALIDATION_FAILED")
	}

	msg := payload.Message
	if msg == "" {
		msg = "server rejected the request"
	}

	fields := map[string]any{}
	for field, msgs := range payload.Errors {
		if len(msgs) > 0 {
			fields[field] = msgs[0]
		}
	}

	return goerrors.New(msg, goerrors.CategoryValidation).
		WithTextCode("VALIDATION_FAILED").
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"fields": fields})
}

// fieldInError reports whether a validation error carries a message for the
// given field.
func fieldInError(err error, field string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}

	fields, ok := richErr.Metadata["fields"].(map[string]any)
	if !ok {
		return false
	}

	_, present := fields[field]
	return present
}

func unexpectedStatus(path string, status int) error {
	return goerrors.New("ensemble API returned an unexpected status", goerrors.CategoryOperation).
		WithTextCode("UNEXPECTED_STATUS").
		WithMetadata(map[string]any{"path": path, "status": status})
}

func malformedResponse(path string, cause error) error {
	err := goerrors.New("ensemble API returned a malformed response", goerrors.CategoryInternal).
		WithTextCode("MALFORMED_RESPONSE").
		WithMetadata(map[string]any{"path": path})
	if cause != nil {
		err = err.WithMetadata(map[string]any{"path": path, "cause": cause.Error()})
	}
	return err
}
