package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"0000001230", "1230"},
		{"1230", "1230"},
		{"0001", "1"},
		{"0000000000", "0"},
		{"", "0"},
		{"A0001", "A0001"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.code))
		})
	}
}
