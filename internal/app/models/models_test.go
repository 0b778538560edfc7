package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusAccepted.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, ApplicationStatus("WAITLISTED").IsValid())
	assert.False(t, ApplicationStatus("").IsValid())
}

func TestApplicationStatusCanTransition(t *testing.T) {
	// Only PENDING moves; both decided states are terminal
	assert.True(t, StatusPending.CanTransition(StatusAccepted))
	assert.True(t, StatusPending.CanTransition(StatusRejected))
	assert.False(t, StatusPending.CanTransition(StatusPending))

	assert.False(t, StatusAccepted.CanTransition(StatusRejected))
	assert.False(t, StatusAccepted.CanTransition(StatusPending))
	assert.False(t, StatusRejected.CanTransition(StatusAccepted))
}
