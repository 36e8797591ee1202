//go:build unit

package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 8, 25, 7, 30, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Applied DR override",
		Data: logrus.Fields{
			"component": "failover",
			"interface": "eth0",
			"address":   "172.16.0.5",
		},
	}

	t.Run("WithoutTime", func(t *testing.T) {
		f := &CompactFormatter{ShowTime: false}
		out, err := f.Format(entry)
		require.NoError(t, err)
		assert.Equal(t, "[INFO][failover][eth0] Applied DR override (address=172.16.0.5)\n", string(out))
	})

	t.Run("WithTime", func(t *testing.T) {
		f := &CompactFormatter{ShowTime: true}
		out, err := f.Format(entry)
		require.NoError(t, err)
		assert.Equal(t, "[07:30:00][INFO][failover][eth0] Applied DR override (address=172.16.0.5)\n", string(out))
	})
}

func TestInitLogger_InvalidLevelFallsBack(t *testing.T) {
	InitLogger(LogConfig{Level: "chatty", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, GetLogger().GetLevel())
}
