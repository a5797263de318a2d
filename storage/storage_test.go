package storage

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

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("user-1", `C:\docs\my resume.pdf`)
	assert.True(t, strings.HasPrefix(key, "resumes/user-1/"))
	assert.True(t, strings.HasSuffix(key, "-my resume.pdf"))

	assert.True(t, strings.HasSuffix(ObjectKey("user-1", ""), "-resume"))
	assert.NotEqual(t, ObjectKey("u", "a.txt"), ObjectKey("u", "a.txt"))
}

func TestR2ConfigEnabled(t *testing.T) {
	assert.False(t, R2Config{}.Enabled())
	conf := R2Config{AccountID: "acct", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	assert.True(t, conf.Enabled())
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", conf.Endpoint())
}

func TestR2ArchivePut(t *testing.T) {
	putter := new(fakePutter)
	archive := &R2Archive{bucket: "resumes", client: putter}

	key, err := archive.Put(context.Background(), "user-1", "cv.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, "resumes", aws.ToString(putter.input.Bucket))
	assert.Equal(t, key, aws.ToString(putter.input.Key))
	assert.Equal(t, "text/plain", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, "hello", putter.body)

	putter.err = errors.New("denied")
	_, err = archive.Put(context.Background(), "user-1", "cv.txt", "text/plain", []byte("hello"))
	assert.ErrorIs(t, err, putter.err)
}
