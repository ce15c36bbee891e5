package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"
	"github.com/gosimple/slug"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tennis-club/internal/platform/id"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/resilience"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

const avatarPrefix = "avatars/"

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	Circuit         resilience.CircuitBreakerConfig
}

type objectPutter interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// AvatarStore writes member avatars to an S3-compatible bucket.
type AvatarStore struct {
	client  objectPutter
	bucket  string
	baseURL string
	ids     id.Generator
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

// NewAvatarStore builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
// A custom Endpoint switches to path-style addressing for MinIO and friends.
func NewAvatarStore(ctx context.Context, cfg Config, logger *logging.Logger) (*AvatarStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("avatar bucket cannot be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "load aws config")
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newAvatarStore(client, cfg, id.NewUUIDGenerator(), logger), nil
}

func newAvatarStore(client objectPutter, cfg Config, ids id.Generator, logger *logging.Logger) *AvatarStore {
	if logger == nil {
		logger = logging.Default()
	}

	circuit := cfg.Circuit
	if circuit.Name == "" {
		circuit.Name = "avatar-store"
	}
	if circuit.OnStateChange == nil {
		bucket := cfg.Bucket
		circuit.OnStateChange = func(name string, from, to resilience.CircuitState) {
			logger.Warn("avatar circuit state changed", "circuit", name, "bucket", bucket, "from", string(from), "to", string(to))
		}
	}

	return &AvatarStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		ids:     ids,
		breaker: resilience.NewCircuitBreaker(circuit),
		logger:  logger,
	}
}

func (s *AvatarStore) PutAvatar(ctx context.Context, object usecase.AvatarObject) (string, error) {
	ctx, span := startSpan(ctx, "s3.AvatarStore.PutAvatar",
		attribute.String("s3.bucket", s.bucket),
		attribute.Int64("avatar.size", object.Size),
	)
	defer span.End()

	key, err := s.objectKey(object)
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	n, err := buf.ReadFrom(io.LimitReader(object.Body, object.Size+1))
	if err != nil {
		return "", crerr.Wrap(err, "read avatar body")
	}
	if n != object.Size {
		return "", fmt.Errorf("%w: avatar body is %d bytes, declared %d", usecase.ErrInvalidInput, n, object.Size)
	}

	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		_, putErr := s.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(buf.B),
			ContentLength: aws.Int64(n),
			ContentType:   aws.String(object.ContentType),
			CacheControl:  aws.String("public, max-age=31536000, immutable"),
		})
		return putErr
	})
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "put avatar failed", "bucket", s.bucket, "key", key, "error", err)
		return "", crerr.Wrapf(err, "put avatar object %s", key)
	}

	s.logger.InfoContext(ctx, "avatar stored", "bucket", s.bucket, "key", key, "bytes", n)
	return s.baseURL + "/" + key, nil
}

// objectKey returns avatars/<slug(username)>-<uuid>.<ext>.
func (s *AvatarStore) objectKey(object usecase.AvatarObject) (string, error) {
	name := slug.Make(object.UserName)
	if name == "" {
		name = "member"
	}
	suffix, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate avatar key: %w", err)
	}
	return avatarPrefix + name + "-" + suffix + "." + object.Extension, nil
}

func publicBaseURL(cfg Config) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"); base != "" {
		return base
	}
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		return endpoint + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
