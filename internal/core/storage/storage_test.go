// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/storage"
)

func TestLocalFiles_Readable(t *testing.T) {
	root := t.TempDir()
	uploads := filepath.Join(root, "wp-content", "uploads", "2020", "05")
	require.NoError(t, os.MkdirAll(uploads, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "photo.jpg"), []byte("jpeg"), 0o644))

	files := storage.NewLocalFiles(root)

	assert.True(t, files.Readable("wp-content/uploads/2020/05/photo.jpg"))
	assert.False(t, files.Readable("wp-content/uploads/2020/05/missing.jpg"))
	assert.False(t, files.Readable("wp-content/uploads/2020/05"), "directories are not readable images")
	assert.False(t, files.Readable("../etc/passwd"))

	_, err := files.Abs("../outside.jpg")
	assert.ErrorIs(t, err, storage.ErrOutsideRoot)
}

func TestFileSink_Put(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "wp-content", "uploads", "2020", "05")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.Chmod(dir, 0o750))

	sink := storage.NewFileSink(root)
	err := sink.Put(context.Background(), "wp-content/uploads/2020/05/photo-300x200.jpg", "image/jpeg", strings.NewReader("pixels"))
	require.NoError(t, err)

	target := filepath.Join(dir, "photo-300x200.jpg")
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(content))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is cleaned up")
}

func TestFileSink_Put_Errors(t *testing.T) {
	sink := storage.NewFileSink(t.TempDir())

	err := sink.Put(context.Background(), "../escape.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, storage.ErrOutsideRoot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sink.Put(ctx, "wp-content/uploads/a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakePutter struct {
	input   *s3.PutObjectInput
	payload string
	err     error
}

func (putter *fakePutter) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	putter.input = input
	body, _ := io.ReadAll(input.Body)
	putter.payload = string(body)
	return &s3.PutObjectOutput{}, putter.err
}

func TestS3Sink_Put(t *testing.T) {
	putter := &fakePutter{}
	sink := storage.NewS3Sink(putter, "media", "/site-a/")

	err := sink.Put(context.Background(), "wp-content/uploads/2020/05/photo-300x200.jpg", "image/jpeg", strings.NewReader("pixels"))
	require.NoError(t, err)

	assert.Equal(t, "media", *putter.input.Bucket)
	assert.Equal(t, "site-a/wp-content/uploads/2020/05/photo-300x200.jpg", *putter.input.Key)
	assert.Equal(t, "image/jpeg", *putter.input.ContentType)
	assert.Equal(t, int64(6), *putter.input.ContentLength)
	assert.Equal(t, "pixels", putter.payload)

	putter.err = errors.New("access denied")
	err = sink.Put(context.Background(), "a.jpg", "", strings.NewReader("x"))
	assert.ErrorContains(t, err, "s3://media/site-a/a.jpg")
	assert.Nil(t, putter.input.ContentType)
}

func TestS3Sink_Key(t *testing.T) {
	assert.Equal(t, "wp-content/uploads/a.jpg", storage.NewS3Sink(&fakePutter{}, "b", "").Key("/wp-content/uploads/a.jpg"))
}
