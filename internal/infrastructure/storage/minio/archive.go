package minio

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
)

var ErrLogNotFound = errors.New(errors.ErrCodeNotFound, "archived log not found")

// LogArchive copies the job log files referenced by an accepted record into
// object storage, keyed under the species id so the originals can be
// retired.
type LogArchive struct {
	client *Client
	logger logging.Logger
}

var _ species.LogArchive = (*LogArchive)(nil)

func NewLogArchive(client *Client, log logging.Logger) *LogArchive {
	return &LogArchive{client: client, logger: log}
}

// objectKey maps a submitted log path to its archive location.  The full
// cleaned path is kept under the species prefix since different jobs may
// produce files with the same base name.
func objectKey(speciesID common.ID, logPath string) string {
	cleaned := strings.TrimPrefix(path.Clean(logPath), "/")
	return "species/" + string(speciesID) + "/" + cleaned
}

// ArchiveLogs uploads each referenced file.  Files that cannot be read or
// stored are reported together after the rest have been archived; the
// caller treats archival as best effort.
func (a *LogArchive) ArchiveLogs(ctx context.Context, speciesID common.ID, paths []string) error {
	var failed []string
	for _, p := range paths {
		if err := a.archiveOne(ctx, speciesID, p); err != nil {
			a.logger.Warn("Failed to archive log file",
				logging.String("species_id", string(speciesID)),
				logging.String("path", p),
				logging.Err(err))
			failed = append(failed, p)
		}
	}
	if len(failed) > 0 {
		return errors.Newf(errors.ErrCodeStorageError,
			"failed to archive %d of %d log files: %s",
			len(failed), len(paths), strings.Join(failed, ", "))
	}
	return nil
}

func (a *LogArchive) archiveOne(ctx context.Context, speciesID common.ID, logPath string) error {
	f, err := os.Open(logPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to open log file")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat log file")
	}

	key := objectKey(speciesID, logPath)
	_, err = a.client.api.PutObject(ctx, a.client.bucket, key, f, stat.Size(), minio.PutObjectOptions{
		ContentType: "text/plain",
		UserMetadata: map[string]string{
			"species-id":    string(speciesID),
			"original-path": logPath,
		},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to store log file")
	}

	a.logger.Debug("Archived log file",
		logging.String("species_id", string(speciesID)),
		logging.String("key", key),
		logging.Int64("size", stat.Size()))
	return nil
}

// ArchivedLog describes one stored log file.
type ArchivedLog struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListLogs returns the archived files for a species record.
func (a *LogArchive) ListLogs(ctx context.Context, speciesID common.ID) ([]ArchivedLog, error) {
	prefix := "species/" + string(speciesID) + "/"
	ch := a.client.api.ListObjects(ctx, a.client.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var logs []ArchivedLog
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "failed to list archived logs")
		}
		logs = append(logs, ArchivedLog{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return logs, nil
}

// DownloadLog reads one archived file back.
func (a *LogArchive) DownloadLog(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.api.GetObject(ctx, a.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to get archived log")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrLogNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read archived log")
	}
	return data, nil
}

// PresignedLogURL returns a time-limited download link for one archived
// file.
func (a *LogArchive) PresignedLogURL(ctx context.Context, key string) (string, error) {
	if _, err := a.client.api.StatObject(ctx, a.client.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrLogNotFound
		}
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat archived log")
	}
	u, err := a.client.api.PresignedGetObject(ctx, a.client.bucket, key, a.client.presignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign log url")
	}
	return u.String(), nil
}

// DeleteLogs removes every archived file for a species record.  Used when a
// record is hard-deleted.
func (a *LogArchive) DeleteLogs(ctx context.Context, speciesID common.ID) (int, error) {
	logs, err := a.ListLogs(ctx, speciesID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, l := range logs {
		if err := a.client.api.RemoveObject(ctx, a.client.bucket, l.Key, minio.RemoveObjectOptions{}); err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeStorageError, "failed to remove archived log")
		}
		deleted++
	}
	return deleted, nil
}
