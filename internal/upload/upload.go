// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package upload copies sweep artifacts to Google Cloud Storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// A Target is a location in Cloud Storage.
type Target struct {
	Bucket string
	Prefix string // object name prefix, without leading or trailing slashes
}

func (t Target) String() string {
	if t.Prefix == "" {
		return "gs://" + t.Bucket
	}
	return "gs://" + t.Bucket + "/" + t.Prefix
}

// Object returns the object name for a local file uploaded to t.
func (t Target) Object(localPath string) string {
	return path.Join(t.Prefix, filepath.Base(localPath))
}

// ParseURL parses a target of the form gs://bucket[/prefix].
func ParseURL(s string) (Target, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Target{}, err
	}
	if u.Scheme != "gs" || u.Host == "" {
		return Target{}, fmt.Errorf("bad upload target %q: want gs://bucket[/prefix]", s)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// An Uploader writes files to a Target.
type Uploader struct {
	client *storage.Client
	target Target

	// Logf, if non-nil, is called after each upload.
	Logf func(format string, args ...interface{})
}

// New returns an Uploader for target. If no options are given, the
// application default credentials are used.
func New(ctx context.Context, target Target, opts ...option.ClientOption) (*Uploader, error) {
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("finding credentials: %w", err)
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &Uploader{client: c, target: target}, nil
}

// Upload copies the local files to the target and returns their URLs.
func (u *Uploader) Upload(ctx context.Context, files ...string) ([]string, error) {
	var urls []string
	for _, f := range files {
		obj := u.target.Object(f)
		if err := u.uploadFile(ctx, f, obj); err != nil {
			return urls, err
		}
		dst := "gs://" + u.target.Bucket + "/" + obj
		if u.Logf != nil {
			u.Logf("uploaded %s to %s", f, dst)
		}
		urls = append(urls, dst)
	}
	return urls, nil
}

func (u *Uploader) uploadFile(ctx context.Context, localPath, obj string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := u.client.Bucket(u.target.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType(localPath)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("failed to copy %s to gs://%s/%s: %w", localPath, u.target.Bucket, obj, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for gs://%s/%s: %w", u.target.Bucket, obj, err)
	}
	return nil
}

func contentType(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	return u.client.Close()
}
