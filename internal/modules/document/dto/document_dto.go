package dto

import (
	"io"
	"os"

	"gabconcours.ga/backend/internal/entity"
)

type UploadInput struct {
	Nupcan string `form:"nupcan" binding:"required"`
	Type   string `form:"type" binding:"required,max=50"`
	Name   string `form:"name" binding:"max=200"`
}

// UploadedFile is the multipart part already opened by the handler.
type UploadedFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

type UpdateStatusRequest struct {
	Status entity.ValidationStatus `json:"status" binding:"required"`
	Reason string                  `json:"reason" binding:"max=1000"`
}

// Download is an open stored file; the caller closes File.
type Download struct {
	File        *os.File
	Size        int64
	FileName    string
	ContentType string
}
