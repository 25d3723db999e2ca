package log_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/pipelined/musik/log"
)

func TestGetLogger(t *testing.T) {
	t.Setenv(log.DebugEnv, "true")
	assert.Equal(t, logrus.DebugLevel, log.GetLogger().GetLevel())

	t.Setenv(log.DebugEnv, "not a bool")
	assert.Equal(t, logrus.InfoLevel, log.GetLogger().GetLevel())
}

func TestNew(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, log.New(true).GetLevel())
	assert.Equal(t, logrus.InfoLevel, log.New(false).GetLevel())
}
