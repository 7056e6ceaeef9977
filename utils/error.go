package utils

import (
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithJSON(statusCode, iris.Map{"error": title, "message": detail})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An internal server error occurred", ctx)
}

// LogInternalServerError logs the underlying cause and responds 500.
// The detail reaches the client only in development mode.
func LogInternalServerError(err error, ctx iris.Context) {
	log.Printf("internal error: %v", err)
	detail := "An internal server error occurred"
	if os.Getenv("ENV") == "development" && err != nil {
		detail = err.Error()
	}
	CreateError(iris.StatusInternalServerError, "Internal Server Error", detail, ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(
		iris.StatusNotFound,
		"Not Found",
		"Resource not found", ctx)
}

func CreateForbidden(ctx iris.Context) {
	CreateError(
		iris.StatusForbidden,
		"Forbidden",
		"Access denied", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(
		iris.StatusConflict,
		"Conflict",
		"Email already registered", ctx)
}

// CreateMissingFieldsError enumerates every missing field in one response.
func CreateMissingFieldsError(fields []string, ctx iris.Context) {
	CreateError(
		iris.StatusBadRequest,
		"Validation Error",
		"Missing required fields: "+strings.Join(fields, ", "), ctx)
}

type validationError struct {
	ActualTag string `json:"tag"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Param     string `json:"param"`
}

func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := wrapValidationErrors(errs)

		ctx.StopWithJSON(
			iris.StatusBadRequest,
			iris.Map{
				"error":            "Validation Error",
				"message":          "One or more fields failed validation",
				"validationErrors": validationErrors,
			})
		return
	}

	CreateError(iris.StatusBadRequest, "Bad Request", "Malformed request body", ctx)
}

func wrapValidationErrors(errs validator.ValidationErrors) []validationError {
	validationErrors := make([]validationError, 0, len(errs))
	for _, validationErr := range errs {
		validationErrors = append(validationErrors, validationError{
			ActualTag: validationErr.ActualTag(),
			Namespace: validationErr.Namespace(),
			Kind:      validationErr.Kind().String(),
			Type:      validationErr.Type().String(),
			Param:     validationErr.Param(),
		})
	}
	return validationErrors
}
