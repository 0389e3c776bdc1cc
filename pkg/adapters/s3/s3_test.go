package s3

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestKV creates a backend on an in-memory gofakes3 server.
func newTestKV(t *testing.T, bucket string, create bool) *KV {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	kv, err := New(ctx, Config{
		Endpoint:        ts.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Bucket:          bucket,
		Prefix:          "device-1/",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	if create {
		_, err = kv.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		require.NoError(t, err)
	}
	return kv
}

func TestKV_GetSet(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, "notes-bucket", true)
	require.NoError(t, kv.Initialize(ctx))

	_, found, err := kv.Get(ctx, "notes")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "notes", []byte(`[{"id":"1"}]`)))
	require.NoError(t, kv.Set(ctx, "notes", []byte(`[{"id":"2"}]`)))

	got, found, err := kv.Get(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"2"}]`, string(got))

	// Objects live under the configured prefix.
	out, err := kv.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String("notes-bucket"),
		Key:    aws.String("device-1/notes"),
	})
	require.NoError(t, err)
	out.Body.Close()
}

func TestKV_MissingBucket(t *testing.T) {
	kv := newTestKV(t, "absent", false)
	assert.Error(t, kv.Initialize(context.Background()))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}
