// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/rewrite"
)

func TestRun_WriteAndRemove(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".htaccess")
	original := "RewriteEngine On\nRewriteBase /\nRewriteRule . /index.php [L]\n"
	require.NoError(t, os.WriteFile(file, []byte(original), 0o640))

	require.NoError(t, run(file, true, false, "wp-content/uploads", "/proxy"))

	merged, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(merged), rewrite.BeginMarker)
	assert.True(t, strings.HasSuffix(string(merged), "RewriteRule . /index.php [L]\n"))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	require.NoError(t, run(file, true, true, "wp-content/uploads", "/proxy"))

	removed, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, original, string(removed))
}

func TestRun_CreatesMissingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".htaccess")

	require.NoError(t, run(file, true, false, "wp-content/uploads", "/proxy"))

	written, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(rewrite.Block("wp-content/uploads", "/proxy"), "\n")+"\n", string(written))
}

func TestRun_FlagErrors(t *testing.T) {
	assert.Error(t, run("", true, false, "wp-content/uploads", "/proxy"))
	assert.Error(t, run(filepath.Join(t.TempDir(), "missing"), false, true, "wp-content/uploads", "/proxy"))
}
