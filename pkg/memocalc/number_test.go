package memocalc

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{123, "123"},
		{-45.5, "-45.5"},
		{0.5, "0.5"},
		{1.0 / 3, "0.3333333333333333"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{1e21, "1e+21"},
		{123456789012345680000, "123456789012345680000"},
		{1.5e300, "1.5e+300"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatNumber(tc.in), "%v", tc.in)
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	v, ok := parseNumber("-12.50")
	assert.True(t, ok)
	assert.Equal(t, -12.5, v)

	v, ok = parseNumber("1" + strings.Repeat("0", 400))
	assert.True(t, ok)
	assert.True(t, math.IsInf(v, 1))

	_, ok = parseNumber("")
	assert.False(t, ok)
}
