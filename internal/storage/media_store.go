package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/loomshop/loomshop-backend/config"
)

// Folders the catalog admin may upload into. Anything else is rejected so
// presigned URLs cannot be pointed at arbitrary bucket paths.
var allowedFolders = map[string]bool{
	"products":    true,
	"upsells":     true,
	"collections": true,
	"size-charts": true,
}

const presignExpiry = 15 * time.Minute

// MediaStore issues presigned S3 PUT URLs for catalog imagery. The server
// never proxies file bytes; the browser uploads straight to the bucket.
type MediaStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewMediaStore(cfg config.S3Config) *MediaStore {
	var awsCfg aws.Config

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	return &MediaStore{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// IssueUploadTicket creates a presigned PUT URL under the given folder.
// The object key is randomized; only the original extension carries over.
func (m *MediaStore) IssueUploadTicket(ctx context.Context, filename, contentType, folder string) (*UploadTicket, error) {
	if !allowedFolders[folder] {
		return nil, fmt.Errorf("folder %q is not allowed", folder)
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), filepath.Ext(filename))

	presignClient := s3.NewPresignClient(m.client)
	presigned, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.client.Options().Region, key)
	if m.baseURL != "" {
		fileURL = fmt.Sprintf("%s/%s", m.baseURL, key)
	}

	return &UploadTicket{
		UploadURL: presigned.URL,
		FileURL:   fileURL,
		Key:       key,
	}, nil
}

// ValidateContentType restricts uploads to the given MIME types.
func (m *MediaStore) ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
