package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	LOCKED            ErrCode = "LOCKED"
	CONFLICT          ErrCode = "CONFLICT"
	VALIDATION_FAILED ErrCode = "VALIDATION_FAILED"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("conflict")

	// ErrValidation covers input the service refuses before any
	// persistence call: inverted absence ranges, empty group selections,
	// unparseable dates.
	ErrValidation = errors.New("validation failed")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must have at least %s entries", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param()))
		case "datetime":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must be a date in %s format", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(VALIDATION_FAILED), strings.Join(errMsg, ", "))
}
