package minio

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

type MockObjectAPI struct {
	mock.Mock
	mu      sync.Mutex
	objects map[string]string
}

func (m *MockObjectAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockObjectAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockObjectAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, objectSize, opts.UserMetadata[MetaRunID])
	if err := args.Error(1); err != nil {
		return minio.UploadInfo{}, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[objectName] = string(data)
	m.mu.Unlock()
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, ETag: "etag", Size: int64(len(data))}, nil
}

type PublisherTestSuite struct {
	suite.Suite
	api *MockObjectAPI
	dir string
}

func (s *PublisherTestSuite) SetupTest() {
	s.api = new(MockObjectAPI)
	s.dir = s.T().TempDir()
	s.Require().NoError(os.MkdirAll(filepath.Join(s.dir, "level_3"), 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "level_3", "src-train.txt"), []byte("C C O | [v1]\n"), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "report.csv"), []byte("a,b\n"), 0o644))
}

func (s *PublisherTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *PublisherTestSuite) publisher(cfg *MinIOConfig) Publisher {
	return NewPublisher(newMinIOClient(s.api, cfg, nil), logging.NewNopLogger())
}

func (s *PublisherTestSuite) TestPublish_CreatesBucketAndUploadsTree() {
	s.api.On("BucketExists", mock.Anything, "datasets").Return(false, nil).Once()
	s.api.On("MakeBucket", mock.Anything, "datasets", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil).Once()
	s.api.On("SetBucketLifecycle", mock.Anything, "datasets", mock.AnythingOfType("*lifecycle.Configuration")).Return(nil).Once()
	s.api.On("PutObject", mock.Anything, "datasets", "runs/preprocess/run-1/level_3/src-train.txt", int64(13), "run-1").Return(nil, nil).Once()
	s.api.On("PutObject", mock.Anything, "datasets", "runs/preprocess/run-1/report.csv", int64(4), "run-1").Return(nil, nil).Once()

	p := s.publisher(&MinIOConfig{Bucket: "datasets", Prefix: "/runs/", RetentionDays: 30})
	res, err := p.Publish(context.Background(), PublishRequest{Dir: s.dir, RunID: "run-1", Command: "preprocess"})
	s.Require().NoError(err)
	s.Equal("datasets", res.Bucket)
	s.Equal("runs/preprocess/run-1", res.Prefix)
	s.Require().Len(res.Objects, 2)
	s.Equal("runs/preprocess/run-1/level_3/src-train.txt", res.Objects[0].ObjectKey)
	s.Equal(int64(17), res.Bytes)
	s.Equal("C C O | [v1]\n", s.api.objects["runs/preprocess/run-1/level_3/src-train.txt"])
}

func (s *PublisherTestSuite) TestEnsureBucket_Once() {
	s.api.On("BucketExists", mock.Anything, "rbt-datasets").Return(true, nil).Once()
	c := newMinIOClient(s.api, &MinIOConfig{}, nil)
	s.Require().NoError(c.EnsureBucket(context.Background()))
	s.Require().NoError(c.EnsureBucket(context.Background()))
}

func (s *PublisherTestSuite) TestPublish_UploadFailure() {
	s.api.On("BucketExists", mock.Anything, "rbt-datasets").Return(true, nil).Once()
	s.api.On("PutObject", mock.Anything, "rbt-datasets", mock.Anything, mock.Anything, "run-2").Return(nil, stderrors.New("access denied"))

	_, err := s.publisher(&MinIOConfig{}).Publish(context.Background(), PublishRequest{Dir: s.dir, RunID: "run-2", Command: "evaluate"})
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeStorageFailed))
}

func (s *PublisherTestSuite) TestPublish_BucketCheckFailure() {
	s.api.On("BucketExists", mock.Anything, "rbt-datasets").Return(false, stderrors.New("dial tcp")).Once()
	_, err := s.publisher(&MinIOConfig{}).Publish(context.Background(), PublishRequest{Dir: s.dir, RunID: "r", Command: "evaluate"})
	s.True(errors.IsCode(err, errors.ErrCodeStorageFailed))
}

func (s *PublisherTestSuite) TestPublish_BadRequest() {
	p := s.publisher(&MinIOConfig{})
	_, err := p.Publish(context.Background(), PublishRequest{Dir: s.dir})
	s.True(errors.IsCode(err, errors.CodeInvalidParam))

	_, err = p.Publish(context.Background(), PublishRequest{Dir: filepath.Join(s.dir, "missing"), RunID: "r"})
	s.True(errors.IsCode(err, errors.CodeIOFailure))
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherTestSuite))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &MinIOConfig{Prefix: "/a/b/"}
	applyDefaults(cfg)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "rbt-datasets", cfg.Bucket)
	assert.Equal(t, int64(16*1024*1024), cfg.PartSize)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "a/b", cfg.Prefix)
}

func TestNewMinIOClient(t *testing.T) {
	_, err := NewMinIOClient(&MinIOConfig{}, nil)
	assert.True(t, errors.IsConfigurationError(err))

	c, err := NewMinIOClient(&MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Bucket())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", contentType("src-train.txt"))
	assert.Equal(t, "text/csv; charset=utf-8", contentType("accuracy.csv"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}

//Personal.AI order the ending
