package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile describes a file persisted to local storage.
type StoredFile struct {
	Name string // secure on-disk name
	Path string
	Hash string // md5 of the content, used for deduplication
	Size int64
}

// FileStorage persists uploaded files under a single directory with
// generated names, so user-supplied filenames never touch the
// filesystem.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Save streams src to disk under a UUID-based name, hashing the
// content on the way through.
func (fs *FileStorage) Save(src io.Reader, originalName string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(fs.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	hasher := md5.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{
		Name: name,
		Path: path,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

// Remove deletes a stored file, tolerating already-missing files.
func (fs *FileStorage) Remove(name string) error {
	err := os.Remove(filepath.Join(fs.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
