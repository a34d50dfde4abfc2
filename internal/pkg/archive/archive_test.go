package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
)

type fakeStore struct {
	headErr  error
	created  []string
	putKey   string
	putBody  []byte
	putErr   error
	metadata map[string]string
}

func (f *fakeStore) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeStore) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = aws.ToString(params.Key)
	f.metadata = params.Metadata
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.putBody = body
	return &s3.PutObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, time.March, 7, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "webhooks/2026/03/07/evt_123.json", ObjectKey("evt_123", at))

	// keys are partitioned by UTC date
	late := time.Date(2026, time.March, 8, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "webhooks/2026/03/07/evt_456.json", ObjectKey("evt_456", late))
}

func TestLoadConfig(t *testing.T) {
	env.Env = map[string]string{"S3_ARCHIVE_ENABLED": "false"}
	t.Cleanup(func() { env.Env = nil })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())

	env.Env = map[string]string{"S3_ARCHIVE_ENABLED": "true", "S3_ARCHIVE_ACCESS_KEY_ID": "key"}
	_, err = LoadConfig()
	assert.Error(t, err)

	env.Env = map[string]string{
		"S3_ARCHIVE_ENABLED":           "true",
		"S3_ARCHIVE_ACCESS_KEY_ID":     "key",
		"S3_ARCHIVE_SECRET_ACCESS_KEY": "secret",
		"S3_ARCHIVE_BUCKET":            "creatorhub-events",
	}
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "creatorhub-events", cfg.BucketName)
}

func TestNewClientDisabled(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestArchiveWritesPayload(t *testing.T) {
	store := &fakeStore{}
	client := newClient(store, &Config{BucketName: "events", Enabled: true})

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	at := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, client.Archive(context.Background(), "evt_1", at, payload))

	assert.Equal(t, "webhooks/2026/10/18/evt_1.json", store.putKey)
	assert.Equal(t, payload, store.putBody)
	assert.Equal(t, "evt_1", store.metadata["event-id"])
}

func TestArchiveError(t *testing.T) {
	store := &fakeStore{putErr: errors.New("access denied")}
	client := newClient(store, &Config{BucketName: "events", Enabled: true})

	err := client.Archive(context.Background(), "evt_1", time.Now(), []byte("{}"))
	assert.ErrorContains(t, err, "access denied")
}

func TestConnectionCreatesMissingBucketOutsideProd(t *testing.T) {
	env.Env = map[string]string{"APP_ENV": "dev"}
	t.Cleanup(func() { env.Env = nil })

	store := &fakeStore{headErr: errors.New("not found")}
	client := newClient(store, &Config{BucketName: "events", Region: "eu-central-1", Enabled: true})
	require.NoError(t, client.testConnection(context.Background()))
	assert.Equal(t, []string{"events"}, store.created)

	env.Env = map[string]string{"APP_ENV": "prod"}
	store = &fakeStore{headErr: errors.New("not found")}
	client = newClient(store, &Config{BucketName: "events", Enabled: true})
	assert.Error(t, client.testConnection(context.Background()))
	assert.Empty(t, store.created)
}
