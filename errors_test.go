package signin_test

import (
	"fmt"
	"testing"

	signin "github.com/goliatone/go-signin"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"expired sentinel", signin.ErrTokenExpired, true},
		{"expired clone", signin.ErrTokenExpired.Clone(), true},
		{"jwt library message", fmt.Errorf("token is expired by 1h"), true},
		{"malformed error", signin.ErrTokenMalformed, false},
		{"unrelated error", fmt.Errorf("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, signin.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"malformed sentinel", signin.ErrTokenMalformed, true},
		{"malformed clone", signin.ErrTokenMalformed.Clone(), true},
		{"jwt library message", fmt.Errorf("token is malformed: could not parse"), true},
		{"middleware message", fmt.Errorf("missing or malformed JWT"), true},
		{"expired error", signin.ErrTokenExpired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, signin.IsMalformedError(tt.err))
		})
	}
}
