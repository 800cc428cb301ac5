package minio

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// MetaRunID is the user metadata key carrying the run identifier.
const MetaRunID = "Rbt-Run-Id"

// PublishRequest names a local output tree and the run it belongs to.
type PublishRequest struct {
	Dir     string
	RunID   string
	Command string
}

// UploadResult describes one uploaded object.
type UploadResult struct {
	ObjectKey string
	ETag      string
	Size      int64
}

// PublishResult summarises a tree upload.
type PublishResult struct {
	Bucket   string
	Prefix   string
	Objects  []UploadResult
	Bytes    int64
	Duration time.Duration
}

// Publisher uploads preprocessing and evaluation output trees.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

type treePublisher struct {
	client *MinIOClient
	logger logging.Logger
}

// NewPublisher returns a Publisher over client.
func NewPublisher(client *MinIOClient, log logging.Logger) Publisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &treePublisher{client: client, logger: log.Named("publish")}
}

// objectPrefix places a run under <prefix>/<command>/<run id>.
func (p *treePublisher) objectPrefix(req PublishRequest) string {
	return path.Join(p.client.config.Prefix, req.Command, req.RunID)
}

// Publish uploads every regular file below req.Dir.  Object keys keep the
// relative path with forward slashes.
func (p *treePublisher) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.Dir == "" || req.RunID == "" {
		return nil, errors.InvalidParam("publish needs a directory and a run id")
	}
	start := time.Now()

	files, err := listTree(req.Dir)
	if err != nil {
		return nil, err
	}
	if err := p.client.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	prefix := p.objectPrefix(req)
	result := &PublishResult{Bucket: p.client.Bucket(), Prefix: prefix}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.client.config.Concurrency)
	for _, rel := range files {
		g.Go(func() error {
			up, err := p.upload(gctx, req, filepath.Join(req.Dir, rel), path.Join(prefix, filepath.ToSlash(rel)))
			if err != nil {
				return err
			}
			mu.Lock()
			result.Objects = append(result.Objects, *up)
			result.Bytes += up.Size
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(result.Objects, func(a, b UploadResult) int {
		return strings.Compare(a.ObjectKey, b.ObjectKey)
	})
	result.Duration = time.Since(start)
	p.logger.Info("output tree published",
		logging.String("bucket", result.Bucket),
		logging.String("prefix", prefix),
		logging.Int("objects", len(result.Objects)),
		logging.Int64("bytes", result.Bytes),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *treePublisher) upload(ctx context.Context, req PublishRequest, local, key string) (*UploadResult, error) {
	f, err := os.Open(local)
	if err != nil {
		return nil, errors.IOFailure(err, "cannot open output file").WithDetail(local)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.IOFailure(err, "cannot stat output file").WithDetail(local)
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType(local),
		UserMetadata: map[string]string{MetaRunID: req.RunID},
		PartSize:     uint64(p.client.config.PartSize),
	}
	info, err := p.client.client.PutObject(ctx, p.client.Bucket(), key, f, st.Size(), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageFailed, "upload failed").WithDetail(key)
	}
	p.logger.Debug("uploaded", logging.String("key", key), logging.Int64("size", info.Size))
	return &UploadResult{ObjectKey: key, ETag: info.ETag, Size: info.Size}, nil
}

func listTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.IOFailure(err, "cannot list output tree").WithDetail(dir)
	}
	return files, nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

//Personal.AI order the ending
