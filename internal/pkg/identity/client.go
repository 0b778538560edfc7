package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertz/schooladmin/internal/pkg/apperrors"
)

// ErrorKind distinguishes a failed request from a request that reached the
// identity service and was semantically rejected (e.g. duplicate email).
type ErrorKind int

const (
	// KindTransport covers network failures, timeouts and malformed responses.
	KindTransport ErrorKind = iota + 1
	// KindRejected covers non-2xx responses from the identity service.
	KindRejected
)

// Error is the typed error returned by all identity service calls.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("identity service rejected %s (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("identity service call %s failed: %s", e.Op, e.Message)
}

// Unwrap ties every identity error to the downstream-service sentinel
func (e *Error) Unwrap() error {
	return apperrors.ErrDownstreamService
}

// Rejected reports whether the request reached the service and was refused
func (e *Error) Rejected() bool {
	return e.Kind == KindRejected
}

// User is the identity record materialized in the external service. Only its
// id is stored locally, as a weak reference.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUserRequest is the payload for the create-user endpoints
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	SchoolID  int64  `json:"schoolId"`
	RoleName  string `json:"roleName"`
}

// Provisioner is the contract the sagas depend on. The HTTP client below is
// the production implementation; tests substitute fakes.
type Provisioner interface {
	CreateUserForStudent(ctx context.Context, req *CreateUserRequest) (*User, error)
	CreateUserForTeacher(ctx context.Context, req *CreateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// Client is a synchronous HTTP client for the external identity service.
// It holds no state beyond connection settings; every call is bounded by the
// configured timeout and callers never retry.
type Client struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a new identity service client
func NewClient(baseURL, internalToken string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		internalToken: internalToken,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// CreateUserForStudent provisions a student account in the identity service
func (c *Client) CreateUserForStudent(ctx context.Context, req *CreateUserRequest) (*User, error) {
	return c.createUser(ctx, "create-user-for-student", req)
}

// CreateUserForTeacher provisions a teacher account in the identity service
func (c *Client) CreateUserForTeacher(ctx context.Context, req *CreateUserRequest) (*User, error) {
	return c.createUser(ctx, "create-user-for-teacher", req)
}

func (c *Client) createUser(ctx context.Context, op string, req *CreateUserRequest) (*User, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Message: fmt.Sprintf("failed to marshal request body: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Message: err.Error()}
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Str("username", req.Username).Msg("Identity service request failed")
		return nil, &Error{Op: op, Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := remoteErrorMessage(respBody)
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("remoteMessage", message).Msg("Identity service rejected user creation")
		return nil, &Error{Op: op, Kind: KindRejected, StatusCode: resp.StatusCode, Message: message}
	}

	var parsed struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if parsed.User.ID == 0 {
		return nil, &Error{Op: op, Kind: KindTransport, Message: "response did not contain a user id"}
	}

	c.logger.Info().Str("op", op).Int64("identityId", parsed.User.ID).Str("username", req.Username).Msg("Identity provisioned")
	return &parsed.User, nil
}

// DeleteUser removes an account from the identity service. The call is
// best-effort; callers log failures and do not retry.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	op := fmt.Sprintf("users/%d", userID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/users/%d", c.baseURL, userID), nil)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Message: err.Error()}
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Int64("identityId", userID).Msg("Identity service delete request failed")
		return &Error{Op: op, Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		message := remoteErrorMessage(respBody)
		c.logger.Warn().Int64("identityId", userID).Int("status", resp.StatusCode).Str("remoteMessage", message).Msg("Identity service rejected user deletion")
		return &Error{Op: op, Kind: KindRejected, StatusCode: resp.StatusCode, Message: message}
	}

	c.logger.Info().Int64("identityId", userID).Msg("Identity deleted")
	return nil
}

// setHeaders applies the internal-request marker and auth token
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Request", "true")
	if c.internalToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.internalToken)
	}
}

// remoteErrorMessage extracts the error message from the identity service's
// error envelope, falling back to the raw body.
func remoteErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if len(body) == 0 {
		return "no response body"
	}
	return string(body)
}
