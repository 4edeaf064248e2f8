// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigate

import (
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_OpensAfterDelay(t *testing.T) {
	opened := make(chan string, 1)
	s := NewScheduler(func(u string) error {
		opened <- u
		return nil
	}, nil)

	start := time.Now()
	require.NoError(t, s.Schedule("https://github.com/AceRider75", 20*time.Millisecond))

	select {
	case u := <-opened:
		assert.Equal(t, "https://github.com/AceRider75", u)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("navigation did not fire")
	}
}

func TestSchedule_RejectsUnsupportedURLs(t *testing.T) {
	s := NewScheduler(func(string) error {
		t.Error("opener must not be called")
		return nil
	}, nil)

	for _, u := range []string{"javascript:alert(1)", "file:///etc/passwd", "/relative", "https://"} {
		err := s.Schedule(u, 0)
		assert.ErrorIs(t, err, ErrUnsupportedURL, u)
	}
	time.Sleep(10 * time.Millisecond)
}

func TestStop_CancelsPending(t *testing.T) {
	s := NewScheduler(func(string) error {
		t.Error("cancelled navigation fired")
		return nil
	}, nil)

	require.NoError(t, s.Schedule("https://example.com", time.Hour))
	assert.Equal(t, 1, s.Pending())
	s.Stop()
	assert.Equal(t, 0, s.Pending())
}

func TestSchedule_ForgetsFiredTimers(t *testing.T) {
	opened := make(chan string, 3)
	s := NewScheduler(func(u string) error {
		opened <- u
		return nil
	}, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Schedule("https://example.com", time.Millisecond))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-opened:
		case <-time.After(2 * time.Second):
			t.Fatal("navigation did not fire")
		}
	}
	assert.Equal(t, 0, s.Pending(), "fired navigations are not retained")
}

type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- string(p)
	return len(p), nil
}

func TestSchedule_LogsOpenFailure(t *testing.T) {
	lines := make(lineWriter, 1)
	s := NewScheduler(func(string) error {
		return errors.New("no browser")
	}, log.New(lines, "", 0))

	require.NoError(t, s.Schedule("https://example.com", 0))

	select {
	case line := <-lines:
		assert.Contains(t, line, "no browser")
		assert.Contains(t, line, "url=https://example.com")
	case <-time.After(2 * time.Second):
		t.Fatal("failure was not logged")
	}
}
