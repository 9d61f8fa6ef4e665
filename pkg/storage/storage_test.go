package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	input *s3manager.UploadInput
	err   error
}

func (s *stubUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &s3manager.UploadOutput{}, nil
}

func TestUploadAssetImage_KeyAndURL(t *testing.T) {
	up := &stubUploader{}
	store := &s3Store{uploader: up, bucket: "grveyard-assets", region: "us-east-1"}

	url, err := store.UploadAssetImage(context.Background(), "uuid-42", strings.NewReader("jpegbytes"))

	require.NoError(t, err)
	require.Equal(t, "https://grveyard-assets.s3.us-east-1.amazonaws.com/assets/uuid-42.jpg", url)

	require.NotNil(t, up.input)
	require.Equal(t, "grveyard-assets", aws.StringValue(up.input.Bucket))
	require.Equal(t, "assets/uuid-42.jpg", aws.StringValue(up.input.Key))
	require.Equal(t, "image/jpeg", aws.StringValue(up.input.ContentType))

	sent, err := io.ReadAll(up.input.Body)
	require.NoError(t, err)
	require.Equal(t, "jpegbytes", string(sent))
}

func TestUploadAssetImage_SameUserOverwrites(t *testing.T) {
	up := &stubUploader{}
	store := &s3Store{uploader: up, bucket: "b", region: "r"}

	_, err := store.UploadAssetImage(context.Background(), "uuid-1", strings.NewReader("a"))
	require.NoError(t, err)
	first := aws.StringValue(up.input.Key)

	_, err = store.UploadAssetImage(context.Background(), "uuid-1", strings.NewReader("b"))
	require.NoError(t, err)

	require.Equal(t, first, aws.StringValue(up.input.Key), "one key per seller, re-upload replaces")
}

func TestUploadAssetImage_UploaderError(t *testing.T) {
	up := &stubUploader{err: errors.New("access denied")}
	store := &s3Store{uploader: up, bucket: "b", region: "r"}

	url, err := store.UploadAssetImage(context.Background(), "uuid-1", strings.NewReader("a"))

	require.Error(t, err)
	require.Empty(t, url)
}
