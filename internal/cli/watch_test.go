package cli_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/study-tracker/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_StopsOnTerminalStatus(t *testing.T) {
	answers := []string{"pending", "pending", "approved"}
	i := 0
	poll := func(context.Context) (string, error) {
		s := answers[i]
		if i < len(answers)-1 {
			i++
		}
		return s, nil
	}

	var seen []string
	final, err := cli.Watch(context.Background(), time.Millisecond, poll, func(s string) { seen = append(seen, s) }, nil)

	require.NoError(t, err)
	assert.Equal(t, "approved", final)
	assert.Equal(t, []string{"pending", "approved"}, seen)
}

func TestWatch_ReturnsImmediatelyWhenAlreadyTerminal(t *testing.T) {
	polls := 0
	poll := func(context.Context) (string, error) {
		polls++
		return "rejected", nil
	}

	final, err := cli.Watch(context.Background(), time.Hour, poll, func(string) {}, nil)

	require.NoError(t, err)
	assert.Equal(t, "rejected", final)
	assert.Equal(t, 1, polls)
}

func TestWatch_ContinuesAfterErrorsAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errorsSeen := 0
	poll := func(context.Context) (string, error) {
		return "", errors.New("connection refused")
	}
	onError := func(error) {
		errorsSeen++
		if errorsSeen == 3 {
			cancel()
		}
	}

	_, err := cli.Watch(ctx, time.Millisecond, poll, func(string) {}, onError)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, errorsSeen)
}

func TestTerminal(t *testing.T) {
	assert.True(t, cli.Terminal("approved"))
	assert.True(t, cli.Terminal("rejected"))
	assert.False(t, cli.Terminal("pending"))
	assert.False(t, cli.Terminal(""))
}
