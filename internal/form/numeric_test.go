package form

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"100", 100},
		{" 40 ", 40},
		{"2.5", 2.5},
		{"-7", -7},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Numeric(tt.in))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "60", FormatNumber(60))
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "0", FormatNumber(math.Copysign(0, -1)))
	assert.Equal(t, "-15", FormatNumber(-15))
	assert.Equal(t, "2.5", FormatNumber(2.5))
}
