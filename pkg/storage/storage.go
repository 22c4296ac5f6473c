package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	FolderDocuments = "documents"
	FolderPhotos    = "photos"
)

var ErrFileNotFound = errors.New("file not found in storage")

// ImageStorage defines contract for image storage provider (Cloudinary or local disk).
type ImageStorage interface {
	// UploadImage uploads image from reader and returns its public URL.
	// folder is optional logical folder in storage (e.g. "photos").
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage deletes image from storage using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

// FileStorage keeps uploaded files on a filesystem tree that is also served statically.
type FileStorage interface {
	// Save writes r under folder with a randomized name derived from fileName and returns the stored name.
	Save(ctx context.Context, r io.Reader, folder, fieldName, fileName string) (string, error)
	// Open returns ErrFileNotFound when the stored name is absent on disk.
	Open(folder, storedName string) (*os.File, os.FileInfo, error)
	Delete(folder, storedName string) error
	// ListOlderThan lists stored names in folder last modified before cutoff.
	ListOlderThan(folder string, cutoff time.Time) ([]string, error)
}

// RandomFileName builds "<field>-<unix ms>-<random><ext>" so stored names never collide
// and never reveal anything about the document they belong to.
func RandomFileName(fieldName, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	n, err := rand.Int(rand.Reader, big.NewInt(1e9))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	if fieldName == "" {
		fieldName = "file"
	}
	return fmt.Sprintf("%s-%d-%09d%s", fieldName, now.UnixMilli(), suffix, ext)
}

// ContentTypeFor maps a stored file name to the MIME type sent on download.
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
