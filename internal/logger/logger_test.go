package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{"off", LevelOff, false, false},
		{"normal", LevelNormal, false, true},
		{"verbose", LevelVerbose, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level, &buf)

			log.Debug("debug %d", 1)
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug 1")))

			log.Info("info %s", "two")
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info two")))
		})
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelOff, &buf)

	log.Error("hidden")
	assert.Zero(t, buf.Len())

	log.SetLevel(LevelVerbose)
	assert.Equal(t, LevelVerbose, log.GetLevel())
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelOff, ParseLevel("quiet"))
	assert.Equal(t, LevelVerbose, ParseLevel(" Debug "))
	assert.Equal(t, LevelNormal, ParseLevel(""))
	assert.Equal(t, "verbose", LevelVerbose.String())
}
