package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/flaco/hooked/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Service interface {
	UploadFile(ctx context.Context, req *UploadFileRequest) (string, error)
}

type UploadFileRequest struct {
	Name        string
	Bytes       []byte
	ContentType string
}

type Storage struct {
	cli    *minio.Client
	bucket string
	scheme string
	domain string
}

func New(conf config.Config) *Storage {
	cli, err := minio.New(
		conf.Minio.Addr, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.Minio.AccessKey, conf.Minio.SecretKey, ""),
			Secure: conf.Minio.UseSSL,
		},
	)
	if err != nil {
		zap.L().Fatal("failed to connect to minio", zap.Error(err))
	}

	ctx := context.Background()
	exists, err := cli.BucketExists(ctx, conf.Minio.Bucket)
	if err != nil {
		zap.L().Fatal("failed to check bucket", zap.Error(err))
	}

	if !exists {
		if err = cli.MakeBucket(ctx, conf.Minio.Bucket, minio.MakeBucketOptions{}); err != nil {
			zap.L().Fatal("failed to create bucket", zap.Error(err))
		}
	}

	return &Storage{
		cli:    cli,
		bucket: conf.Minio.Bucket,
		scheme: conf.Server.Scheme,
		domain: conf.Minio.PublicDomain,
	}
}

// UploadFile stores the object and returns its public URL. An empty request
// is a no-op so callers can pass the optional avatar through unconditionally.
func (s *Storage) UploadFile(ctx context.Context, req *UploadFileRequest) (string, error) {
	const op = "s3.UploadFile.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if req == nil || len(req.Bytes) == 0 {
		return "", nil
	}

	_, err := s.cli.PutObject(
		ctx,
		s.bucket,
		req.Name,
		bytes.NewReader(req.Bytes),
		int64(len(req.Bytes)),
		minio.PutObjectOptions{ContentType: req.ContentType},
	)
	if err != nil {
		zap.L().Error("failed to upload file", zap.String("op", op), zap.Error(err))
		return "", err
	}

	return fmt.Sprintf("%s://%s/%s/%s", s.scheme, s.domain, s.bucket, req.Name), nil
}
