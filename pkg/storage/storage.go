package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ImageStore uploads a seller's listing image and returns a retrievable URL.
// Images are keyed assets/{userId}.jpg, so re-uploading replaces the previous
// image for that seller.
type ImageStore interface {
	UploadAssetImage(ctx context.Context, userUUID string, body io.Reader) (string, error)
}

type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type s3Store struct {
	uploader uploadAPI
	bucket   string
	region   string
}

// NewS3Store builds an ImageStore over an S3 bucket. Credentials come from
// the default chain (env, shared config, instance role).
func NewS3Store(bucket, region string) (ImageStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &s3Store{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		region:   region,
	}, nil
}

func objectKey(userUUID string) string {
	return "assets/" + userUUID + ".jpg"
}

func (s *s3Store) UploadAssetImage(ctx context.Context, userUUID string, body io.Reader) (string, error) {
	key := objectKey(userUUID)

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("image/jpeg"),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
