package storage

import "context"

// Resource types understood by the media store. Audio is stored as
// "video" because the video pipeline carries the audio codecs.
const (
	ResourceAudio = "video"
	ResourceImage = "image"
)

// UploadResult is the stable reference to a stored asset
type UploadResult struct {
	URL      string
	PublicID string
}

// MediaStore owns raw audio/image bytes and hands back stable URLs.
// Handlers depend on this interface; the Cloudinary client implements it.
type MediaStore interface {
	UploadAudio(ctx context.Context, filePath, folder string) (*UploadResult, error)
	UploadAvatar(ctx context.Context, filePath, folder string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}
