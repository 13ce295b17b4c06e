package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"stylusnotes/internal/canvas"
)

const blobSubdir = "stylus"

// BlobStore keeps note frames as PNG files under <root>/stylus. Refs handed
// out are slash-separated and relative to root, e.g. "stylus/<id>.png".
type BlobStore struct {
	root string
}

// NewBlobStore creates the blob directory under root if needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(filepath.Join(root, blobSubdir), 0755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &BlobStore{root: root}, nil
}

// Dir returns the directory that holds the PNG files.
func (b *BlobStore) Dir() string {
	return filepath.Join(b.root, blobSubdir)
}

// RefFor returns the ref a note's frame is stored under.
func (b *BlobStore) RefFor(noteID string) string {
	return path.Join(blobSubdir, noteID+".png")
}

// Path resolves ref to an absolute file path inside the blob directory.
func (b *BlobStore) Path(ref string) (string, error) {
	clean := path.Clean("/" + ref)[1:]
	if !strings.HasPrefix(clean, blobSubdir+"/") {
		return "", fmt.Errorf("blob ref %q is outside %s/", ref, blobSubdir)
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}

// Write stores data for noteID, replacing any previous frame, and returns its ref.
func (b *BlobStore) Write(noteID string, data []byte) (string, error) {
	ref := b.RefFor(noteID)
	dst, err := b.Path(ref)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(b.Dir(), ".tmp-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename blob: %w", err)
	}
	return ref, nil
}

// Read returns the raw bytes stored under ref.
func (b *BlobStore) Read(ref string) ([]byte, error) {
	p, err := b.Path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read blob %s: %w", ref, canvas.ErrImageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", ref, err)
	}
	return data, nil
}

// Remove deletes the file behind ref. A missing file is not an error.
func (b *BlobStore) Remove(ref string) error {
	p, err := b.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// ModTime returns when the file behind ref was last written.
func (b *BlobStore) ModTime(ref string) (time.Time, error) {
	p, err := b.Path(ref)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat blob: %w", err)
	}
	return info.ModTime(), nil
}

// List returns the refs of every stored PNG.
func (b *BlobStore) List() ([]string, error) {
	entries, err := os.ReadDir(b.Dir())
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	var refs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".png") {
			continue
		}
		refs = append(refs, path.Join(blobSubdir, name))
	}
	return refs, nil
}

// LoadImage implements canvas.ImageLoader. ref is either a blob ref or a
// data:image/...;base64, URL.
func (b *BlobStore) LoadImage(_ context.Context, ref string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(ref, "data:") {
		data, err = DecodeDataURL(ref)
	} else {
		data, err = b.Read(ref)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", canvas.ErrImageDecode, err)
	}
	return img, nil
}

// DecodeDataURL extracts the payload of a base64 data URL.
func DecodeDataURL(u string) ([]byte, error) {
	header, payload, ok := strings.Cut(u, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: not a base64 data URL", canvas.ErrImageDecode)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", canvas.ErrImageDecode, err)
	}
	return data, nil
}

// EncodeDataURL wraps PNG bytes as a data:image/png;base64, URL.
func EncodeDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
