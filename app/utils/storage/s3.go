package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for MinIO / R2
	AccessKey string
	SecretKey string
	PublicURL string
	Prefix    string
}

// S3Store works with AWS S3 and S3-compatible services.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	prefix  string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage/s3: S3_BUCKET is not configured")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConf, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" || !strings.Contains(baseURL, "://") {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsConf, clientOpts...),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		prefix:  strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := ObjectName(filename)
	if err != nil {
		return "", err
	}
	key := s.key(name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("storage/s3: put %s: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	if url == "" || !strings.HasPrefix(url, s.baseURL) {
		return nil
	}
	key := s.key(path.Base(url))
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", key, err)
	}
	return nil
}
