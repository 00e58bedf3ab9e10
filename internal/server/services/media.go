package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	sc "github.com/dmitrijs2005/marketplace/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// MediaService hands out presigned URLs so clients upload profile images
// straight to object storage.
type MediaService struct {
	config *sc.Config
	logger logging.Logger
	now    func() time.Time
}

func NewMediaService(cfg *sc.Config, l logging.Logger) *MediaService {
	return &MediaService{
		config: cfg,
		logger: l.With("module", "media_service"),
		now:    time.Now,
	}
}

// ProfileImageKey returns a fresh object key under the user's prefix,
// e.g. users/42/2024/05/01/<uuid>.
func ProfileImageKey(userID int64, d time.Time) string {
	return fmt.Sprintf("users/%d/%04d/%02d/%02d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// ProfileImageUploadURL returns an object key and a presigned PUT URL for
// it, valid for the configured UploadURLValidity.
func (s *MediaService) ProfileImageUploadURL(ctx context.Context, userID int64) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client init failed", "error", err)
		return "", "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := ProfileImageKey(userID, s.now().UTC())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.UploadURLValidity))
	if err != nil {
		s.logger.Error(ctx, "presign failed", "key", key, "error", err)
		return "", "", fmt.Errorf("error presigning upload: %w", err)
	}

	return key, req.URL, nil
}
