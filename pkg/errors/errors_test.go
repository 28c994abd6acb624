package errors

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorText(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		name     string
		err      *Error
		text     string
		userText string
	}{
		{
			name:     "plain",
			err:      New(ErrCodeInvalidManifest, "cannot read %s", "Cargo.toml"),
			text:     "INVALID_MANIFEST: cannot read Cargo.toml",
			userText: "cannot read Cargo.toml",
		},
		{
			name:     "wrapped",
			err:      Wrap(ErrCodeNetwork, cause, "fetch serde-rs/serde"),
			text:     "NETWORK_ERROR: fetch serde-rs/serde: connection reset",
			userText: "fetch serde-rs/serde: connection reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.err.Error())
			assert.Equal(t, tt.userText, UserMessage(tt.err))
		})
	}

	assert.Equal(t, "connection reset", UserMessage(cause))
	assert.ErrorIs(t, Wrap(ErrCodeNetwork, cause, "x"), cause)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeUnauthorized, "bad token"), ErrCodeUnauthorized},
		{"fmt wrapped", fmt.Errorf("run: %w", New(ErrCodeInvalidInput, "x")), ErrCodeInvalidInput},
		{"rate limited", fmt.Errorf("page 2: %w", &RateLimitedError{}), ErrCodeRateLimited},
		{"outermost code wins", Wrap(ErrCodeFetchFailed, New(ErrCodeNotFound, "gone"), "fetch"), ErrCodeFetchFailed},
		{"uncoded", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
			if tt.want != "" {
				assert.True(t, Is(tt.err, tt.want))
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{New(ErrCodeUnauthorized, "x"), true},
		{New(ErrCodeInvalidManifest, "x"), true},
		{&RateLimitedError{}, false},
		{New(ErrCodeFetchFailed, "x"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fatal, IsFatal(tt.err), "IsFatal(%v)", tt.err)
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		err  *RateLimitedError
		want string
	}{
		{&RateLimitedError{}, "rate limited"},
		{&RateLimitedError{RetryAfter: 90 * time.Second}, "rate limited (retry after 1m30s)"},
		{&RateLimitedError{Message: "gitlab.com", RetryAfter: 1500 * time.Millisecond}, "rate limited: gitlab.com (retry after 2s)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestWarnings(t *testing.T) {
	var w Warnings

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Add(ErrCodeFetchFailed, fmt.Sprintf("repo-%02d", i), "failed")
		}()
	}
	wg.Wait()

	require.Equal(t, 50, w.Len())
	items := w.Items()
	assert.True(t, sort.SliceIsSorted(items, func(i, j int) bool {
		return items[i].Subject < items[j].Subject
	}), "Items() should be sorted by subject")
}

func TestWarningsAddErr(t *testing.T) {
	var w Warnings
	w.AddErr(ErrCodeFetchFailed, "github.com/a/b", &RateLimitedError{})
	w.AddErr(ErrCodeFetchFailed, "github.com/c/d", errors.New("boom"))
	w.AddErr(ErrCodeFetchFailed, "github.com/e/f", New(ErrCodeUnsupportedHost, "no client"))

	items := w.Items()
	require.Len(t, items, 3)
	assert.Equal(t, ErrCodeRateLimited, items[0].Code)
	assert.Equal(t, ErrCodeFetchFailed, items[1].Code)
	assert.Equal(t, "github.com/c/d: boom", items[1].String())
	assert.Equal(t, ErrCodeUnsupportedHost, items[2].Code)
}
