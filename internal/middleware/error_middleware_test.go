package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertz/schooladmin/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIErrorSchoolCodeConflict(t *testing.T) {
	w := handleError(t, apperrors.ErrSchoolAlreadyExists)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "School with this code already exists")
	assert.Contains(t, w.Body.String(), `"field":"code"`)
}

func TestHandleAPIErrorConflictMessagePassthrough(t *testing.T) {
	err := apperrors.NewConflictError("guardian phone already registered in this school")
	w := handleError(t, err)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "guardian phone already registered in this school")
}

func TestHandleAPIErrorValidationGroup(t *testing.T) {
	for _, err := range []error{apperrors.ErrValidationFailed, apperrors.ErrBadRequest} {
		w := handleError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestHandleAPIErrorSagaDetailsSurface(t *testing.T) {
	saga := apperrors.NewSagaError(errors.New("insert failed"),
		"student creation failed after identity provisioning",
		apperrors.CompensationFailed, 88)
	w := handleError(t, saga)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"compensation":"failed"`)
	assert.Contains(t, w.Body.String(), `"externalIdentityId":88`)
}

func TestHandleAPIErrorUnknownDefaultsToInternal(t *testing.T) {
	w := handleError(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
