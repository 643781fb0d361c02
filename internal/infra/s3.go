package infra

import (
	"bytes"
	"context"
	"fmt"

	"siso/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Store uploads reports to Amazon S3 or a compatible API (MinIO etc.).
type S3Store struct {
	bucket   string
	uploader *manager.Uploader
}

func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{bucket: bucket, uploader: manager.NewUploader(client)}
}

// NewS3StoreFromConfig loads the default AWS credential chain. A non-empty
// S3_ENDPOINT switches to path-style addressing for S3-compatible servers.
func NewS3StoreFromConfig(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Info().Str("bucket", cfg.S3Bucket).Str("region", cfg.S3Region).Msg("relatórios arquivados no S3")
	return NewS3Store(client, cfg.S3Bucket), nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
