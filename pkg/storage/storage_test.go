package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomFileName(t *testing.T) {
	now := time.UnixMilli(1735689600000)
	name := RandomFileName("document", "Acte de Naissance.PDF", now)
	assert.Regexp(t, regexp.MustCompile(`^document-1735689600000-\d{9}\.pdf$`), name)

	assert.Regexp(t, `^file-`, RandomFileName("", "x.png", now))
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.pdf":  "application/pdf",
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
		"a.docx": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}

func TestLocalStorageLifecycle(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads/")
	require.NoError(t, err)

	stored, err := s.Save(context.Background(), bytes.NewBufferString("%PDF-1.4"), FolderDocuments, "document", "bac.pdf")
	require.NoError(t, err)

	f, info, err := s.Open(FolderDocuments, stored)
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), info.Size())

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, FolderDocuments, stored), old, old))
	names, err := s.ListOlderThan(FolderDocuments, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{stored}, names)

	require.NoError(t, s.Delete(FolderDocuments, stored))
	require.NoError(t, s.Delete(FolderDocuments, stored))
	_, _, err = s.Open(FolderDocuments, stored)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, _, err = s.Open(FolderDocuments, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStoragePhotoURL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	url, err := s.UploadImage(context.Background(), bytes.NewBufferString("png"), FolderPhotos, "me.png")
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/photos/photo-\d+-\d{9}\.png$`, url)

	require.NoError(t, s.DeleteImage(context.Background(), url))
	_, _, err = s.Open(FolderPhotos, filepath.Base(url))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCloudinaryPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345678/gabconcours/photos/photo-1-000000001.jpg": "gabconcours/photos/photo-1-000000001",
		"https://res.cloudinary.com/demo/image/upload/gabconcours/photos/p.png":                            "gabconcours/photos/p",
		"https://res.cloudinary.com/demo/image/upload/videos/clip.jpg":                                     "videos/clip",
		"https://example.com/photos/p.png":                                                                 "",
		"https://res.cloudinary.com/demo/image/upload/v123":                                                "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, cloudinaryPublicID(raw), raw)
	}
}
