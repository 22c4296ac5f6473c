package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type LocalStorage struct {
	root      string
	publicURL string
}

// NewLocalStorage stores files under root. publicURL is the URL prefix root is served on (e.g. "/uploads").
func NewLocalStorage(root, publicURL string) (*LocalStorage, error) {
	for _, folder := range []string{FolderDocuments, FolderPhotos} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload folder %s: %w", folder, err)
		}
	}
	return &LocalStorage{root: root, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *LocalStorage) Save(ctx context.Context, r io.Reader, folder, fieldName, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	storedName := RandomFileName(fieldName, fileName, time.Now())
	target, err := s.resolve(folder, storedName)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return storedName, nil
}

func (s *LocalStorage) Open(folder, storedName string) (*os.File, os.FileInfo, error) {
	target, err := s.resolve(folder, storedName)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrFileNotFound
	}

	return f, info, nil
}

func (s *LocalStorage) Delete(folder, storedName string) error {
	target, err := s.resolve(folder, storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) ListOlderThan(folder string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// UploadImage lets the local tree act as photo storage when Cloudinary is not configured.
func (s *LocalStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	storedName, err := s.Save(ctx, r, folder, "photo", fileName)
	if err != nil {
		return "", err
	}
	return path.Join(s.publicURL, folder, storedName), nil
}

func (s *LocalStorage) DeleteImage(_ context.Context, fileURL string) error {
	rel := strings.TrimPrefix(fileURL, s.publicURL+"/")
	folder, name := path.Split(rel)
	return s.Delete(strings.TrimSuffix(folder, "/"), name)
}

// resolve keeps every path inside root; stored names come from the database.
func (s *LocalStorage) resolve(folder, storedName string) (string, error) {
	clean := filepath.Base(storedName)
	if clean != storedName || clean == "." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid stored file name %q", storedName)
	}
	return filepath.Join(s.root, folder, clean), nil
}
