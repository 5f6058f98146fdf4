package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestUploadFileUsesBucketURL(t *testing.T) {
	fake := &fakeS3{}
	u := &Uploader{Client: fake, Bucket: "yard-photos", Region: "eu-west-1"}

	url, err := u.UploadFile(context.Background(), strings.NewReader("img"), "containers/1/a.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://yard-photos.s3.eu-west-1.amazonaws.com/containers/1/a.png", url)
	assert.Equal(t, "yard-photos", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "containers/1/a.png", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "img", fake.body)
}

func TestUploadFilePrefersCloudFront(t *testing.T) {
	u := &Uploader{Client: &fakeS3{}, Bucket: "b", Region: "r", CloudFrontDomain: "cdn.example.com"}

	url, err := u.UploadFile(context.Background(), strings.NewReader(""), "k.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.jpg", url)
}

func TestUploadFileWrapsErrors(t *testing.T) {
	boom := errors.New("access denied")
	u := &Uploader{Client: &fakeS3{err: boom}, Bucket: "b", Region: "r"}

	_, err := u.UploadFile(context.Background(), strings.NewReader(""), "k", "image/jpeg")
	assert.ErrorIs(t, err, boom)
}
