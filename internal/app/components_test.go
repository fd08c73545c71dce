package app_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/logger"
	"go.trai.ch/bb/internal/app"
	"go.trai.ch/bb/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestComponents_ConfigureLogging(t *testing.T) {
	lg, ok := logger.New().(*logger.Logger)
	require.True(t, ok)
	buf := &bytes.Buffer{}
	lg.SetOutput(buf)

	c := &app.Components{Logger: lg}
	c.ConfigureLogging(true, true)

	lg.Info("hidden")
	lg.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestComponents_ConfigureLoggingIgnoresPlainLoggers(t *testing.T) {
	c := &app.Components{Logger: mocks.NewMockLogger(gomock.NewController(t))}
	c.ConfigureLogging(true, false)
}
