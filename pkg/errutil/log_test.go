// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/pkg/errutil"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf)

	err := oops.Code("MANIFEST_PARSE").With("path", "/tmp/plugins.yaml").Errorf("bad manifest")
	errutil.LogError(logger, "load failed", err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "load failed", record["msg"])
	assert.Equal(t, "MANIFEST_PARSE", record["code"])
	assert.Contains(t, record["error"], "bad manifest")

	ctx, ok := record["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/tmp/plugins.yaml", ctx["path"])
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf)

	errutil.LogError(logger, "something broke", errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["error"])
	assert.NotContains(t, record, "code")
}

func TestLogWarn_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf)

	errutil.LogWarn(logger, "plugin skipped", oops.Code("PLUGIN_RESOLUTION").Errorf("missing dir"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "PLUGIN_RESOLUTION", record["code"])
}
