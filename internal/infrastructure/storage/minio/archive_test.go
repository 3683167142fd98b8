package minio

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/types/common"
)

type putCall struct {
	key      string
	size     int64
	data     []byte
	metadata map[string]string
}

type mockAPI struct {
	puts       []putCall
	putErr     error
	objects    []minio.ObjectInfo
	statErr    error
	removed    []string
	presignErr error
}

func (m *mockAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	return nil, nil
}

func (m *mockAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (m *mockAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (m *mockAPI) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.puts = append(m.puts, putCall{key: key, size: size, data: data, metadata: opts.UserMetadata})
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (m *mockAPI) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error) {
	return nil, nil
}

func (m *mockAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statErr != nil {
		return minio.ObjectInfo{}, m.statErr
	}
	return minio.ObjectInfo{Key: key}, nil
}

func (m *mockAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	m.removed = append(m.removed, key)
	return nil
}

func (m *mockAPI) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(m.objects))
	for _, obj := range m.objects {
		ch <- obj
	}
	close(ch)
	return ch
}

func (m *mockAPI) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error) {
	if m.presignErr != nil {
		return nil, m.presignErr
	}
	return url.Parse("https://minio.local/" + bucket + "/" + key + "?signed=1")
}

func newTestArchive(api *mockAPI) *LogArchive {
	client := &Client{
		api:           api,
		bucket:        "tckdb-logs",
		presignExpiry: time.Hour,
		logger:        logging.NewNopLogger(),
	}
	return NewLogArchive(client, logging.NewNopLogger())
}

func writeTempLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestObjectKey(t *testing.T) {
	id := common.ID("abc-123")
	assert.Equal(t, "species/abc-123/calcs/opt.log", objectKey(id, "/calcs/opt.log"))
	assert.Equal(t, "species/abc-123/opt.log", objectKey(id, "opt.log"))
	assert.Equal(t, "species/abc-123/calcs/opt.log", objectKey(id, "/calcs/../calcs/opt.log"))
}

func TestArchiveLogs_UploadsFiles(t *testing.T) {
	dir := t.TempDir()
	optPath := writeTempLog(t, dir, "opt.log", "optimization output")
	freqPath := writeTempLog(t, dir, "freq.log", "frequency output")

	api := &mockAPI{}
	archive := newTestArchive(api)
	id := common.ID("abc-123")

	err := archive.ArchiveLogs(context.Background(), id, []string{optPath, freqPath})
	require.NoError(t, err)
	require.Len(t, api.puts, 2)

	assert.Equal(t, objectKey(id, optPath), api.puts[0].key)
	assert.Equal(t, "optimization output", string(api.puts[0].data))
	assert.Equal(t, int64(len("optimization output")), api.puts[0].size)
	assert.Equal(t, "abc-123", api.puts[0].metadata["species-id"])
	assert.Equal(t, optPath, api.puts[0].metadata["original-path"])
}

func TestArchiveLogs_ReportsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	goodPath := writeTempLog(t, dir, "opt.log", "output")
	missing := filepath.Join(dir, "does-not-exist.log")

	api := &mockAPI{}
	archive := newTestArchive(api)

	err := archive.ArchiveLogs(context.Background(), "abc-123", []string{goodPath, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, err.Error(), missing)

	// The readable file was still archived.
	require.Len(t, api.puts, 1)
	assert.Equal(t, objectKey("abc-123", goodPath), api.puts[0].key)
}

func TestListLogs(t *testing.T) {
	now := time.Now()
	api := &mockAPI{
		objects: []minio.ObjectInfo{
			{Key: "species/abc-123/calcs/opt.log", Size: 10, LastModified: now},
			{Key: "species/abc-123/calcs/freq.log", Size: 20, LastModified: now},
		},
	}
	archive := newTestArchive(api)

	logs, err := archive.ListLogs(context.Background(), "abc-123")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "species/abc-123/calcs/opt.log", logs[0].Key)
	assert.Equal(t, int64(20), logs[1].Size)
}

func TestPresignedLogURL(t *testing.T) {
	archive := newTestArchive(&mockAPI{})

	u, err := archive.PresignedLogURL(context.Background(), "species/abc-123/opt.log")
	require.NoError(t, err)
	assert.Contains(t, u, "tckdb-logs/species/abc-123/opt.log")
	assert.Contains(t, u, "signed=1")
}

func TestDeleteLogs(t *testing.T) {
	api := &mockAPI{
		objects: []minio.ObjectInfo{
			{Key: "species/abc-123/opt.log"},
			{Key: "species/abc-123/freq.log"},
		},
	}
	archive := newTestArchive(api)

	deleted, err := archive.DeleteLogs(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"species/abc-123/opt.log", "species/abc-123/freq.log"}, api.removed)
}
