package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/audora-app/backend/pkg/logger"
)

// CloudinaryStore implements MediaStore on top of the Cloudinary API
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
}

// InitCloudinary creates a CloudinaryStore from a cloudinary:// URL
func InitCloudinary(url string) (*CloudinaryStore, error) {
	if url == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL environment variable not set")
	}

	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("error initializing cloudinary client: %w", err)
	}
	client.Config.URL.Secure = true

	logger.Info("Cloudinary client initialized successfully!")
	return &CloudinaryStore{client: client}, nil
}

// UploadAudio uploads a staged audio file. The "video" resource type is
// used because it carries the audio codecs and transformations.
func (s *CloudinaryStore) UploadAudio(ctx context.Context, filePath, folder string) (*UploadResult, error) {
	resp, err := s.client.Upload.Upload(ctx, filePath, uploader.UploadParams{
		ResourceType: ResourceAudio,
		Folder:       folder,
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// UploadAvatar uploads a staged avatar image, cropped to a square
// centered on the face.
func (s *CloudinaryStore) UploadAvatar(ctx context.Context, filePath, folder string) (*UploadResult, error) {
	resp, err := s.client.Upload.Upload(ctx, filePath, uploader.UploadParams{
		ResourceType:   ResourceImage,
		Folder:         folder,
		Transformation: "w_300,h_300,c_fill,g_face",
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Destroy removes a remote asset by its public id
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID, resourceType string) error {
	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	return err
}
