package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertz/schooladmin/internal/app/models/dto"
)

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/applications",
		ValidateRequest(&dto.SubmitApplicationRequest{}),
		func(c *gin.Context) {
			body, _ := c.Get("validatedBody")
			req, ok := body.(*dto.SubmitApplicationRequest)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"firstName": req.FirstName})
		})
	return router
}

func TestValidateRequestPassesValidBody(t *testing.T) {
	router := validationRouter()

	body := `{"schoolId":1,"firstName":"Arda","lastName":"Yilmaz"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Arda")
}

func TestValidateRequestRejectsMissingFields(t *testing.T) {
	router := validationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{"schoolId":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestValidateRequestRejectsMalformedJSON(t *testing.T) {
	router := validationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateRequestBindsFreshInstancePerRequest(t *testing.T) {
	router := validationRouter()

	first := httptest.NewRecorder()
	reqA := httptest.NewRequest(http.MethodPost, "/applications",
		strings.NewReader(`{"schoolId":1,"firstName":"Arda","lastName":"Yilmaz","phone":"+905550001"}`))
	reqA.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(first, reqA)
	require.Equal(t, http.StatusOK, first.Code)

	// A second request omitting the optional field must not see the first
	// request's leftover value
	second := httptest.NewRecorder()
	reqB := httptest.NewRequest(http.MethodPost, "/applications",
		strings.NewReader(`{"schoolId":1,"firstName":"Burak","lastName":"Kaya"}`))
	reqB.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(second, reqB)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "Burak")
}
