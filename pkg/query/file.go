package query

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yaklabco/dantetool/pkg/diff"
	"github.com/yaklabco/dantetool/pkg/fsutil"
)

// File is a query file loaded for in-place rewriting.
type File struct {
	Path    string
	Queries []Query

	info     *fsutil.FileInfo
	original []byte
}

// Load reads the query file at path and remembers its state so that Save
// can refuse to overwrite concurrent changes.
func Load(ctx context.Context, path string) (*File, error) {
	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	qs, err := Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &File{Path: path, Queries: qs, info: info, original: content}, nil
}

// Digest returns the content hash of the file as loaded.
func (f *File) Digest() fsutil.Digest {
	return f.info.Hash
}

// Save writes the queries back with a count attribute. With backup set, a
// sidecar copy of the original content is kept first.
func (f *File) Save(ctx context.Context, backup bool) error {
	if backup {
		if _, err := fsutil.CreateBackup(ctx, f.Path); err != nil {
			return err
		}
	}

	content, err := f.encode()
	if err != nil {
		return err
	}
	if err := fsutil.Replace(ctx, f.info, content); err != nil {
		return err
	}

	_, info, err := fsutil.ReadFile(ctx, f.Path)
	if err != nil {
		return err
	}
	f.info = info
	f.original = content
	return nil
}

// Diff returns what Save would change on disk, or nil when nothing would.
func (f *File) Diff() (*diff.Diff, error) {
	content, err := f.encode()
	if err != nil {
		return nil, err
	}
	return diff.Compute(f.Path, f.original, content), nil
}

func (f *File) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f.Queries, CountAttr(f.Queries)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Path, err)
	}
	return buf.Bytes(), nil
}
