package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkonowrocki/allegro-cli/internal/allegro"
	"github.com/pkonowrocki/allegro-cli/internal/fetch"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "session expired", err: fetch.ErrSessionExpired, want: "Unauthorized"},
		{name: "not logged in", err: allegro.ErrNotLoggedIn, want: "Unauthorized"},
		{
			name: "wrapped session expired",
			err:  fmt.Errorf("offer 123: %w", fetch.ErrSessionExpired),
			want: "Unauthorized",
		},
		{
			name: "solver unavailable",
			err:  &fetch.SolverUnavailableError{URL: "http://localhost:8191/v1"},
			want: "SolverUnavailable",
		},
		{name: "solver failure", err: &fetch.SolverError{Message: "boom"}, want: "SolverError"},
		{name: "fetch failed", err: &fetch.FetchFailedError{Status: 503}, want: "FetchFailed"},
		{name: "api error", err: &allegro.APIError{Status: 403}, want: "ApiError"},
		{name: "anything else", err: errors.New("boom"), want: "CommandError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestMaskSecret(t *testing.T) {
	short := "QXLSESSID=abc"
	assert.Equal(t, short, maskSecret(short))

	long := strings.Repeat("a", 30) + strings.Repeat("b", 30)
	masked := maskSecret(long)
	assert.Equal(t, strings.Repeat("a", 20)+"..."+strings.Repeat("b", 10), masked)
}

func TestSplitColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "name", "sellingMode.price.amount", "seller.name"},
		splitColumns(""))
	assert.Equal(t, []string{"id", "name"}, splitColumns("id, name,"))
}
