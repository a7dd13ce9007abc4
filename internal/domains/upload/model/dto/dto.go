package dto

import (
	"localguide/infras/s3"
	"localguide/shared/constant"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	FieldSingle   = constant.FormFileImage
	FieldMultiple = constant.FormFileImages
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// File is an uploaded image already read into memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) IsAllowedType() bool {
	_, ok := allowedContentTypes[strings.ToLower(f.ContentType)]

	return ok
}

// ObjectName returns a unique object name that keeps the original extension when it has one.
func (f File) ObjectName() string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		ext = allowedContentTypes[strings.ToLower(f.ContentType)]
	}

	return uuid.NewString() + ext
}

// DeleteFileRequest names the object by public id, or by the url returned on upload.
type DeleteFileRequest struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

func (r *UploadResponse) FromResult(result s3.UploadResult) {
	r.URL = result.URL
	r.PublicID = result.PublicID
}
