package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"14.3.123.4567", "14.3"},
		{"14.10.1", "14.10"},
		{"14.3", "14.3"},
		{"14", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Patch(tt.version), "version %q", tt.version)
	}
}

func TestQueueName(t *testing.T) {
	assert.Equal(t, "Ranked Solo/Duo", QueueName(420))
	assert.Equal(t, "ARAM", QueueName(450))
	assert.Equal(t, "Other (9999)", QueueName(9999))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30m 30s", FormatDuration(1830))
	assert.Equal(t, "20m 05s", FormatDuration(1205))
	assert.Equal(t, "0m 00s", FormatDuration(0))
}
