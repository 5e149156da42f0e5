package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"achievement-hub/core/library"
	"achievement-hub/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	latestName   = "latest.json"
	snapshotsDir = "snapshots"
	stampLayout  = "20060102T150405.000Z"
)

// Snapshot describes one stored copy of the library document.
type Snapshot struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service copies the library document to and from an object store.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	retain int
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a backup service over client.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		retain: max(cfg.Retain, 0),
		logger: logger.With(zap.String("feature", "backup")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) key(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// Push uploads doc as the latest copy and, when retention is enabled, as a timestamped
// snapshot. Snapshots beyond the retention count are removed oldest first.
func (s *Service) Push(ctx context.Context, doc *library.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}

	keys := []string{s.key(latestName)}
	if s.retain > 0 {
		keys = append(keys, s.key(snapshotsDir, s.now().Format(stampLayout)+".json"))
	}
	for _, key := range keys {
		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
	}

	if s.retain > 0 {
		if err := s.prune(ctx); err != nil {
			s.logger.Warn("Failed to prune snapshots", zap.Error(err))
		}
	}
	s.logger.Debug("Library backed up", zap.Int("bytes", len(data)), zap.Int("games", len(doc.Games)))
	return nil
}

// Pull downloads the latest copy. It returns library.ErrNotFound when none exists.
func (s *Service) Pull(ctx context.Context) (*library.Document, error) {
	return s.fetch(ctx, s.key(latestName))
}

// PullSnapshot downloads the snapshot stored under key.
func (s *Service) PullSnapshot(ctx context.Context, key string) (*library.Document, error) {
	if !strings.HasPrefix(key, s.key(snapshotsDir)+"/") {
		return nil, fmt.Errorf("%q is not a snapshot key", key)
	}
	return s.fetch(ctx, key)
}

func (s *Service) fetch(ctx context.Context, key string) (*library.Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, library.ErrNotFound
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer obj.Close()

	var doc library.Document
	if err := json.NewDecoder(obj).Decode(&doc); err != nil {
		// Minio reports a missing object on the first read.
		if storage.IsNotFound(err) {
			return nil, library.ErrNotFound
		}
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &doc, nil
}

// Snapshots lists the stored snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.key(snapshotsDir) + "/", Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list snapshots: %w", obj.Err)
		}
		out = append(out, Snapshot{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	// Keys embed a sortable UTC timestamp.
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

func (s *Service) prune(ctx context.Context) error {
	snapshots, err := s.Snapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) <= s.retain {
		return nil
	}

	stale := snapshots[s.retain:]
	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, snap := range stale {
		objectsCh <- minio.ObjectInfo{Key: snap.Key}
	}
	close(objectsCh)

	var failed []string
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", rerr.ObjectName, rerr.Err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("remove %d snapshots: %v", len(failed), failed)
	}
	s.logger.Debug("Pruned snapshots", zap.Int("removed", len(stale)))
	return nil
}
