package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterFailureRatio(t *testing.T) {
	b := New[int]("test-upstream", Settings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	})

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}

	_, err := b.Execute(func() (int, error) { return 1, nil })
	assert.True(t, IsOpen(err))
	assert.Equal(t, "open", b.State())
}

func TestBreaker_PassesResults(t *testing.T) {
	b := New[string]("ok-upstream", DefaultSettings())

	v, err := b.Execute(func() (string, error) { return "hello", nil })
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, "ok-upstream", b.Name())
}

func TestIsOpen_OtherErrors(t *testing.T) {
	assert.False(t, IsOpen(errors.New("plain")))
	assert.False(t, IsOpen(nil))
}
