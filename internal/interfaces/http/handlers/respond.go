// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// OK writes a success envelope
func OK(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data)
}

// Created writes a success envelope with a 201 status
func Created(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, message, data)
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// Fail maps a service error onto an HTTP status and writes a failure
// envelope.
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, errs.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, errs.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, errs.ErrValidationFailed),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrExpired),
		errors.Is(err, errs.ErrInsufficientStock),
		errors.Is(err, errs.ErrLimitExceeded):
		status, message = http.StatusBadRequest, err.Error()
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// BadRequest writes a 400 failure envelope for malformed input
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}

// uintParam parses a positive integer path parameter
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// intQuery parses an integer query parameter with a default
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
