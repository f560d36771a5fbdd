package storage

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/services/storage/aws_client"
)

type s3FileStore struct {
	client aws_client.S3Client
	bucket string
}

// NewS3FileStore stores attachments in an S3 bucket; the returned
// storage path is the object key.
func NewS3FileStore(region, bucket string) interfaces.FileStore {
	client := aws_client.NewS3Client(&aws.Config{Region: aws.String(region)})
	return &s3FileStore{client: client, bucket: bucket}
}

func (s *s3FileStore) Write(ctx context.Context, filename string, content []byte) (string, error) {
	key := path.Join("attachments", path.Base(filename))

	err := s.client.Upload(ctx, s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return key, nil
}

func (s *s3FileStore) Read(ctx context.Context, storagePath string) ([]byte, error) {
	content, err := s.client.Download(ctx, s.bucket, storagePath)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return content, nil
}
