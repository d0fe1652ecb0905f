package utils_test

import (
	"testing"
	"time"

	"source-resolver/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Int", 42, 42},
		{"Int64", int64(7), 7},
		{"Uint8", uint8(3), 3},
		{"Float", 2.9, 2},
		{"String", " 15 ", 15},
		{"Bytes", []byte("12"), 12},
		{"Garbage", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "Oslo", "Oslo"},
		{"Bytes", []byte("x"), "x"},
		{"Time", ts, "2024-03-01T10:30:00Z"},
		{"Float32", float32(1.5), "1.5"},
		{"Float64", 0.1, "0.1"},
		{"Int", int32(9), "9"},
		{"Bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ToString(tt.in))
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{1, true},
		{0, false},
		{"true", true},
		{"YES", true},
		{"1", true},
		{"no", false},
		{[]byte("true"), true},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.ToBool(tt.in), "%v", tt.in)
	}
}
