// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultIsSilent(t *testing.T) {
	SetLogger(nil)
	// must not panic without Init
	Printf("hello %d", 1)
	Debugf("hello %d", 2)
	Sync()
}

func TestPrintf(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Printf("loaded %s", "e1m1")
	Debugf("%d faces", 6)

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, "loaded e1m1", all[0].Message)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	assert.Equal(t, "6 faces", all[1].Message)
	assert.Equal(t, zapcore.DebugLevel, all[1].Level)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	} {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qmap.log")
	l := New("warn", DefaultFileConfig(path), nil)
	l.Info("dropped")
	l.Warn("kept")
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "\n"))
	assert.Contains(t, string(b), `"msg":"kept"`)
}
