package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/kunal-qd/fabric-orders-api/config"
)

// BlobStore defines the interface for binary attachment storage.
// Uploaded reference photos live here; entries point at them through
// tagged references (models.NewImageRef).
type BlobStore interface {
	// Upload stores an uploaded file and returns its storage key
	Upload(fileHeader *multipart.FileHeader) (string, error)

	// Fetch returns the stored bytes and their content type
	Fetch(key string) ([]byte, string, error)

	// Delete removes a stored object
	Delete(key string) error
}

// S3BlobStore implements BlobStore backed by AWS S3
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

var blobStoreInstance BlobStore

// InitBlobStore initializes the S3-backed blob store with AWS credentials
func InitBlobStore() (BlobStore, error) {
	cfg := appConfig.GetConfig()

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)

	blobStoreInstance = &S3BlobStore{
		client: client,
		bucket: cfg.AWSS3Bucket,
	}

	return blobStoreInstance, nil
}

// GetBlobStore returns the initialized blob store instance
func GetBlobStore() BlobStore {
	return blobStoreInstance
}

// SetBlobStore sets the blob store instance (primarily for testing)
func SetBlobStore(store BlobStore) {
	blobStoreInstance = store
}

// Upload stores an uploaded file in S3 and returns the object key
func (s *S3BlobStore) Upload(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Unique object key: uploads/{timestamp}_{filename}
	timestamp := time.Now().UnixNano()
	filename := filepath.Base(fileHeader.Filename)
	key := fmt.Sprintf("uploads/%d_%s", timestamp, filename)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// Fetch retrieves a stored object from S3
func (s *S3BlobStore) Fetch(key string) ([]byte, string, error) {
	out, err := s.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch from S3: %w", err)
	}
	defer func() {
		if closeErr := out.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close S3 body: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read S3 body: %w", err)
	}

	contentType := "image/jpeg"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}

	return content, contentType, nil
}

// Delete removes an object from S3
func (s *S3BlobStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}
