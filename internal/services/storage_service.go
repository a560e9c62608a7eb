// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/config"
)

const (
	attachmentFolder  = "order-attachments"
	maxAttachmentSize = 10 * 1024 * 1024 // 10MB
)

var (
	errAttachmentTooLarge  = fmt.Errorf("attachment exceeds %d bytes", maxAttachmentSize)
	errAttachmentBadFormat = fmt.Errorf("attachment is not a supported image")
	allowedAttachmentExts  = []string{".jpg", ".jpeg", ".png", ".gif"}
)

// FileStorage stores order attachments.
type FileStorage interface {
	Upload(ctx context.Context, body []byte, fileName, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// StorageService uploads to S3, or only builds local URLs when no AWS
// credentials are configured.
type StorageService struct {
	s3Client *s3.S3
	aws      config.AWSConfig
	localURL string
	now      func() time.Time
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	s := &StorageService{
		aws:      cfg.AWS,
		localURL: fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port),
		now:      time.Now,
	}
	if cfg.AWS.AccessKeyID == "" {
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

func (s *StorageService) Upload(ctx context.Context, body []byte, fileName, contentType string) (*UploadResult, error) {
	key := s.objectKey(fileName)
	result := &UploadResult{Key: key, Size: int64(len(body)), MimeType: contentType}

	if s.s3Client == nil {
		result.URL = fmt.Sprintf("%s/%s", s.localURL, key)
		return result, nil
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	result.URL = s.objectURL(key)
	return result, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s.s3Client == nil {
		return nil
	}
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) objectKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s_%s%s", attachmentFolder, s.now().Format("20060102"), uuid.New().String()[:8], ext)
}

func (s *StorageService) objectURL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.aws.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.aws.S3Bucket, s.aws.Region, key)
}

// readAttachment reads an uploaded mockup, enforcing the size limit, the
// extension allow-list and an image content signature.
func readAttachment(r io.Reader, fileName string) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, candidate := range allowedAttachmentExts {
		if ext == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, "", errAttachmentBadFormat
	}

	body, err := io.ReadAll(io.LimitReader(r, maxAttachmentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(body) > maxAttachmentSize {
		return nil, "", errAttachmentTooLarge
	}

	contentType := http.DetectContentType(body)
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return body, contentType, nil
	}
	return nil, "", errAttachmentBadFormat
}
