// Package storage stores uploaded media and hands back opaque handles.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownHandle indicates a handle that this store did not issue.
var ErrUnknownHandle = errors.New("unknown media handle")

// Folder groups media by purpose inside a store.
type Folder string

const (
	FolderAvatars    Folder = "avatars"
	FolderCovers     Folder = "covers"
	FolderVideos     Folder = "videos"
	FolderThumbnails Folder = "thumbnails"
)

// Media stores binary content and deletes it again by handle.
type Media interface {
	Store(ctx context.Context, folder Folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, handle string) error
}

// objectKey builds a collision-free key that keeps the upload's extension.
func objectKey(folder Folder, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(string(folder), uuid.NewString()+ext)
}
