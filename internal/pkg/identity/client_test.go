package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertz/schooladmin/internal/pkg/apperrors"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "internal-secret", 2*time.Second, zerolog.Nop())
}

func TestCreateUserForStudentSuccess(t *testing.T) {
	var gotPath, gotAuth, gotInternal string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotInternal = r.Header.Get("X-Internal-Request")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"user":{"id":321,"username":"arda.yilmaz0042","email":"arda@example.com"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	user, err := client.CreateUserForStudent(context.Background(), &CreateUserRequest{
		Username: "arda.yilmaz0042",
		Email:    "arda@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(321), user.ID)
	assert.Equal(t, "arda.yilmaz0042", user.Username)
	assert.Equal(t, "/create-user-for-student", gotPath)
	assert.Equal(t, "Bearer internal-secret", gotAuth)
	assert.Equal(t, "true", gotInternal)
}

func TestCreateUserRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"email already registered"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateUserForTeacher(context.Background(), &CreateUserRequest{Email: "dup@example.com"})
	require.Error(t, err)

	var identityErr *Error
	require.ErrorAs(t, err, &identityErr)
	assert.True(t, identityErr.Rejected())
	assert.Equal(t, http.StatusConflict, identityErr.StatusCode)
	assert.Contains(t, identityErr.Message, "email already registered")

	// Every identity failure maps onto the downstream-service sentinel
	assert.True(t, errors.Is(err, apperrors.ErrDownstreamService))
}

func TestCreateUserTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := testClient(server.URL)
	_, err := client.CreateUserForStudent(context.Background(), &CreateUserRequest{})
	require.Error(t, err)

	var identityErr *Error
	require.ErrorAs(t, err, &identityErr)
	assert.Equal(t, KindTransport, identityErr.Kind)
	assert.False(t, identityErr.Rejected())
	assert.True(t, errors.Is(err, apperrors.ErrDownstreamService))
}

func TestCreateUserTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release // hold the response past the client timeout
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "internal-secret", 50*time.Millisecond, zerolog.Nop())
	_, err := client.CreateUserForStudent(context.Background(), &CreateUserRequest{})
	require.Error(t, err)

	var identityErr *Error
	require.ErrorAs(t, err, &identityErr)
	assert.Equal(t, KindTransport, identityErr.Kind)
	assert.True(t, errors.Is(err, apperrors.ErrDownstreamService))
}

func TestCreateUserMissingIDInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateUserForStudent(context.Background(), &CreateUserRequest{})
	require.Error(t, err)

	var identityErr *Error
	require.ErrorAs(t, err, &identityErr)
	assert.Equal(t, KindTransport, identityErr.Kind)
}

func TestDeleteUser(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.DeleteUser(context.Background(), 321)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/users/321", gotPath)
}

func TestDeleteUserRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such user"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.DeleteUser(context.Background(), 999)
	require.Error(t, err)

	var identityErr *Error
	require.ErrorAs(t, err, &identityErr)
	assert.True(t, identityErr.Rejected())
	assert.Contains(t, identityErr.Message, "no such user")
}

func TestRemoteErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "nested", remoteErrorMessage([]byte(`{"error":{"message":"nested"}}`)))
	assert.Equal(t, "flat", remoteErrorMessage([]byte(`{"message":"flat"}`)))
	assert.Equal(t, "plain text", remoteErrorMessage([]byte(`plain text`)))
	assert.Equal(t, "no response body", remoteErrorMessage(nil))
}
