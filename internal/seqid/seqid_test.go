package seqid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrailingSequence(t *testing.T) {
	tests := []struct {
		id   string
		want int64
	}{
		{"INV-2025-001", 1},
		{"INV-2025-007", 7},
		{"INV-2025-120", 120},
		{"ORD-2024-999", 999},
		{"SHP-KA01-0042", 42},
		{"ADM-0003", 3},
		{"KA01", 1},
		{"KA17", 17},
		{"INV-2025-ABC", 0},
		{"INV-2025-", 0},
		{"", 0},
		{"no-digits-at-all", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TrailingSequence(tt.id), "id %q", tt.id)
	}
}

func TestCodePrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kathmandu Store", "KA"},
		{"lalitpur", "LA"},
		{"7-Eleven Branch", "EL"},
		{"  biratnagar outlet", "BI"},
		{"9", "XX"},
		{"", "XX"},
		{"X", "XX"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CodePrefix(tt.name), "name %q", tt.name)
	}
}
