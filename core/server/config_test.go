package server_test

import (
	"testing"

	"source-resolver/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Limit(t *testing.T) {
	tests := []struct {
		name      string
		cfg       server.Config
		requested int
		want      int
	}{
		{"Requested", server.Config{DefaultLimit: 100, MaxLimit: 1000}, 25, 25},
		{"Default", server.Config{DefaultLimit: 100, MaxLimit: 1000}, 0, 100},
		{"Negative", server.Config{DefaultLimit: 100, MaxLimit: 1000}, -3, 100},
		{"Capped", server.Config{DefaultLimit: 100, MaxLimit: 1000}, 5000, 1000},
		{"NoCap", server.Config{DefaultLimit: 100}, 5000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Limit(tt.requested))
		})
	}
}
