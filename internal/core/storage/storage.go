// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage gives the translator and the editor access to files.

Paths are always relative to the WordPress root, e.g.
"wp-content/uploads/2020/05/photo.jpg".

  - [LocalFiles] answers whether an original exists and opens it for probing.
  - [Sink] receives materialized editor output, either on disk ([FileSink])
    or in an S3 bucket ([S3Sink]).
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrOutsideRoot is returned for paths that escape the WordPress root.
var ErrOutsideRoot = errors.New("storage: path is outside the root")

// Sink stores a materialized image.
type Sink interface {
	Put(ctx context.Context, relativePath, contentType string, body io.Reader) error
}

// # Local Files

// LocalFiles reads originals below the WordPress root.
type LocalFiles struct {
	root string
}

// NewLocalFiles returns a reader rooted at the WordPress installation.
func NewLocalFiles(root string) *LocalFiles {
	return &LocalFiles{root: root}
}

// Abs joins relativePath to the root, rejecting paths that climb out of it.
func (files *LocalFiles) Abs(relativePath string) (string, error) {
	return resolve(files.root, relativePath)
}

// Readable reports whether relativePath is a regular file that can be opened.
func (files *LocalFiles) Readable(relativePath string) bool {
	file, err := files.Open(relativePath)
	if err != nil {
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	return err == nil && info.Mode().IsRegular()
}

// Open opens relativePath for reading.
func (files *LocalFiles) Open(relativePath string) (*os.File, error) {
	abs, err := files.Abs(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

func resolve(root, relativePath string) (string, error) {
	clean := filepath.FromSlash(relativePath)
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, relativePath)
	}
	return filepath.Join(root, clean), nil
}
