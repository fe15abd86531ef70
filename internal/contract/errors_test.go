package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch: %w", &UpstreamError{Source: "docker hub", Err: cause})

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotificationFailure)
	assert.Contains(t, err.Error(), "upstream unavailable: docker hub: connection refused")

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, "docker hub", upstream.Source)

	built := NewUpstreamError("github", "unexpected status %d", 502)
	assert.ErrorIs(t, built, ErrUpstreamUnavailable)
	assert.Contains(t, built.Error(), "unexpected status 502")
}

func TestNotificationError(t *testing.T) {
	err := &NotificationError{Sink: "telegram", Err: errors.New("chat not found")}
	assert.ErrorIs(t, err, ErrNotificationFailure)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, "notification failure: telegram: chat not found", err.Error())
}
