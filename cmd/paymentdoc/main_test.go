package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cmd := newRootCommand(logger)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelpWithBrokenEnvironment(t *testing.T) {
	t.Setenv("PAYMENTDOC_LOG_LEVEL", "loud")
	t.Setenv("PAYMENTDOC_RATE_BURST", "0")

	for _, args := range [][]string{{"--help"}, {"generate", "--help"}, {"serve", "-h"}} {
		out, err := run(t, args...)
		require.NoError(t, err, args)
		assert.Contains(t, out, "Usage:", args)
	}

	_, err := run(t, "generate", "-o", filepath.Join(t.TempDir(), "debug.json"))
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PAYMENTDOC_OUTPUT", filepath.Join(dir, "from-env.json"))

	t.Run("environment", func(t *testing.T) {
		_, err := run(t, "generate")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "from-env.json"))
	})

	t.Run("flags override the environment", func(t *testing.T) {
		path := filepath.Join(dir, "from-flag.json")
		_, err := run(t, "--log-level", "debug", "generate", "-o", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "3.1.0", doc["openapi"])
		assert.Contains(t, doc, "webhooks")
	})
}

func TestLogLevelFlag(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cmd := newRootCommand(logger)
	cmd.SetArgs([]string{"--log-level", "warn", "generate", "-o", filepath.Join(t.TempDir(), "debug.yaml")})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}
