package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// LabelArchive lưu ảnh nhãn đã scan để tra cứu lại
type LabelArchive interface {
	// Put lưu ảnh, trả về object key
	Put(ctx context.Context, scanID string, image []byte) (string, error)
}

// S3PutObjectAPI phần của s3.Client mà archive cần
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ArchiveConfig cấu hình S3
type S3ArchiveConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // MinIO / localstack, rỗng = AWS
}

// S3LabelArchive lưu ảnh nhãn lên S3
type S3LabelArchive struct {
	client S3PutObjectAPI
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewS3LabelArchive tạo mới S3LabelArchive từ default AWS config
func NewS3LabelArchive(ctx context.Context, cfg S3ArchiveConfig, logger *zap.Logger) (*S3LabelArchive, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3LabelArchiveWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewS3LabelArchiveWithClient tạo archive từ client có sẵn
func NewS3LabelArchiveWithClient(client S3PutObjectAPI, bucket, prefix string, logger *zap.Logger) *S3LabelArchive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return &S3LabelArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Put upload ảnh với key dạng <prefix>YYYY/MM/DD/<scanID><ext>
func (sa *S3LabelArchive) Put(ctx context.Context, scanID string, image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	key := sa.prefix + path.Join(sa.now().UTC().Format("2006/01/02"), scanID+imageExtension(contentType))

	_, err := sa.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sa.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", newCollaboratorError(CollaboratorArchive, "put", err)
	}

	sa.logger.Debug("Đã lưu ảnh nhãn", zap.String("key", key), zap.Int("bytes", len(image)))
	return key, nil
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// NoopLabelArchive dùng khi không cấu hình S3
type NoopLabelArchive struct{}

// Put không lưu gì
func (NoopLabelArchive) Put(ctx context.Context, scanID string, image []byte) (string, error) {
	return "", nil
}
