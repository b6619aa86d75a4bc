package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codedrip/models"
)

const msgNotFound = "Repository not found"

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		// ErrInvalidID, ErrRemoteAPI, ErrPersistence and anything unclassified.
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": "..."}. Server errors are prefixed with
// prefix when one is given.
func writeError(c *gin.Context, err error, prefix string) {
	status := statusFor(err)

	msg := err.Error()
	switch {
	case status == http.StatusNotFound:
		msg = msgNotFound
	case status == http.StatusInternalServerError && prefix != "":
		msg = prefix + msg
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}
