package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "query cap reached",
		Data:    logrus.Fields{"stage": "query", "dropped": 2},
	}

	out, err := (&CustomFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2026-03-01 09:30:00] [WARN] [] query cap reached dropped=2 stage=query\n", string(out))
}

func TestInitLogger_FallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("not-a-level", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())

	var buf bytes.Buffer
	Log.SetOutput(&buf)
	WithStage("collect", "run-1").Info("hello")
	assert.Contains(t, buf.String(), "run_id=run-1")
	assert.Contains(t, buf.String(), "stage=collect")
}
