// internal/interfaces/http/handlers/respond_test.go
package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func failStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, err)
	return w.Code
}

func TestFailStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errs.ErrNotFound, http.StatusNotFound},
		{errs.ErrForbidden, http.StatusForbidden},
		{errs.ErrUnauthorized, http.StatusUnauthorized},
		{errs.ErrValidationFailed, http.StatusBadRequest},
		{errs.ErrInvalidState, http.StatusBadRequest},
		{errs.ErrExpired, http.StatusBadRequest},
		{errs.ErrInsufficientStock, http.StatusBadRequest},
		{errs.ErrLimitExceeded, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, failStatus(t, tc.err), tc.err.Error())
	}
}

func TestFailWrappedErrorKeepsStatus(t *testing.T) {
	err := fmt.Errorf("only 2 of widget available: %w", errs.ErrInsufficientStock)
	assert.Equal(t, http.StatusBadRequest, failStatus(t, err))
}
