package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
)

var (
	// ValidationError is a client mistake in the request (422).
	ValidationError = errs.Class("validation")
	// AuthError means no authorization context reached the handler (401).
	AuthError = errs.Class("authentication")
	// PermissionError means the caller may not perform the operation (403).
	PermissionError = errs.Class("permission")
)

const internalMessage = "internal server error"

// statusFor maps an error class to the status code answered to the client.
// Anything unclassified is an internal failure.
func statusFor(err error) int {
	switch {
	case ValidationError.Has(err):
		return http.StatusUnprocessableEntity
	case AuthError.Has(err):
		return http.StatusUnauthorized
	case PermissionError.Has(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage strips the class prefix from client errors. Internal causes
// are never exposed.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return internalMessage
	}

	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}

	return err.Error()
}

// webError answers err with the status of its class and logs internal causes.
func webError(c *gin.Context, err error) int {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("failed to run batch request")
	} else {
		logger.Warnf("returning %d error to user: %v", status, err)
	}

	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(status, ErrorResponse{Message: publicMessage(err, status)})

	return status
}
