package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestMemoryStorageStoreAndDelete(t *testing.T) {
	ctx := context.Background()
	media := NewMemoryStorage()

	handle, err := media.Store(ctx, FolderAvatars, "Me.PNG", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(handle, "memory://avatars/") || !strings.HasSuffix(handle, ".png") {
		t.Fatalf("unexpected handle %q", handle)
	}
	if !media.Has(handle) {
		t.Fatal("expected object to be stored")
	}

	if err := media.Delete(ctx, handle); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := media.Delete(ctx, handle); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle got %v", err)
	}
}

func TestObjectKeyDropsDirectories(t *testing.T) {
	key := objectKey(FolderVideos, `C:\uploads\..\clip.MP4`)
	if !strings.HasPrefix(key, "videos/") || !strings.HasSuffix(key, ".mp4") || strings.Contains(key, "..") {
		t.Fatalf("unexpected key %q", key)
	}
}

type deleterStub struct {
	keys []string
}

func (d *deleterStub) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	d.keys = append(d.keys, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageDeleteResolvesHandles(t *testing.T) {
	deleter := &deleterStub{}
	store := &S3Storage{client: deleter, bucket: "media", baseURL: "https://cdn.example.com"}

	if err := store.Delete(context.Background(), "https://cdn.example.com/videos/abc.mp4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleter.keys) != 1 || deleter.keys[0] != "videos/abc.mp4" {
		t.Fatalf("unexpected deleted keys %v", deleter.keys)
	}

	if err := store.Delete(context.Background(), "https://elsewhere.example.com/videos/abc.mp4"); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle got %v", err)
	}
}

func TestDiscardIgnoresParentCancellation(t *testing.T) {
	media := NewMemoryStorage()
	first, _ := media.Store(context.Background(), FolderVideos, "a.mp4", strings.NewReader("a"))
	second, _ := media.Store(context.Background(), FolderThumbnails, "a.png", strings.NewReader("b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Discard(ctx, media, first, "", second); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if media.Len() != 0 {
		t.Fatalf("expected all objects removed, %d left", media.Len())
	}
	if err := Discard(context.Background(), media, first); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle got %v", err)
	}
}
