package grounding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConfigurationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Structured kind", &Error{Kind: KindConfiguration, Message: "credential rejected"}, true},
		{"Wrapped structured kind", fmt.Errorf("search: %w", &Error{Kind: KindConfiguration, Message: "x"}), true},
		{"Generic kind", &Error{Kind: KindGeneric, Message: "quota exceeded"}, false},
		{"Plain error with marker", errors.New("Invalid API Key provided"), true},
		{"Marker is case sensitive", errors.New("invalid api key"), false},
		{"Plain error", errors.New("network down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConfigurationError(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "inner", Message(fmt.Errorf("outer: %w", &Error{Message: "inner"})))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "configuration", KindConfiguration.String())
	assert.Equal(t, "generic", KindGeneric.String())
}
