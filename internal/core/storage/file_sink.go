// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSink writes output into the WordPress tree.
type FileSink struct {
	root string
}

func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

// Put writes body to relativePath through a temporary file in the same
// directory. The file gets the directory's permission bits without execute,
// the way WordPress sets permissions on generated sizes.
func (sink *FileSink) Put(ctx context.Context, relativePath, _ string, body io.Reader) error {
	abs, err := resolve(sink.root, relativePath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create %s: %w", dir, err)
	}

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mediagate-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, reader: body}); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %s: %w", relativePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", relativePath, err)
	}

	if err := os.Chmod(tmp.Name(), filePerm(dirInfo.Mode())); err != nil {
		return fmt.Errorf("storage: chmod %s: %w", relativePath, err)
	}

	if err := os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("storage: rename into %s: %w", relativePath, err)
	}
	return nil
}

func filePerm(dirMode fs.FileMode) fs.FileMode {
	return dirMode.Perm() & 0o666
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
