package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		index int
		want  Level
	}{
		{0, LevelLow},
		{30, LevelLow},
		{31, LevelMedium},
		{60, LevelMedium},
		{61, LevelHigh},
		{100, LevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.index), "index %d", tt.index)
	}
}

func TestLevel_Presentation(t *testing.T) {
	assert.Equal(t, "Baixo Risco", LevelLow.Label())
	assert.Equal(t, "Alto Risco", LevelHigh.Label())
	assert.Equal(t, "yellow", LevelMedium.Color())
	assert.Equal(t, "red", LevelHigh.Color())
	assert.Empty(t, Level("unknown").Color())
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("medium")
	assert.True(t, ok)
	assert.Equal(t, LevelMedium, l)

	_, ok = ParseLevel("critical")
	assert.False(t, ok)
}
