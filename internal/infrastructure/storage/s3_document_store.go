// Package storage loads order documents from S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	infraconfig "github.com/erp/yellowcube/internal/infrastructure/config"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
)

const (
	defaultRegion        = "us-east-1"
	defaultInvoicePrefix = "documents/"
	invoiceContentType   = "application/pdf"

	// documents larger than this are not sent inline
	maxDocumentSize = 10 << 20
)

// ErrDocumentTooLarge is returned for invoices above the inline size limit
var ErrDocumentTooLarge = errors.New("storage: document too large")

var _ fulfillment.DocumentSource = (*S3DocumentStore)(nil)

// S3DocumentStore reads rendered invoices from a bucket. Invoices are stored
// under {prefix}{invoice hash}.pdf. It works with any S3-compatible storage
// (AWS S3, MinIO, RustFS).
type S3DocumentStore struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// Option configures an S3DocumentStore
type Option func(*S3DocumentStore)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *S3DocumentStore) {
		s.logger = l
	}
}

// WithClient replaces the S3 client built from the configuration
func WithClient(client *s3.Client) Option {
	return func(s *S3DocumentStore) {
		s.client = client
	}
}

// NewS3DocumentStore creates a document store from configuration
func NewS3DocumentStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...Option) (*S3DocumentStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	store := &S3DocumentStore{
		bucket: cfg.Bucket,
		prefix: cfg.InvoicePrefix,
		logger: zap.NewNop(),
	}
	if store.prefix == "" {
		store.prefix = defaultInvoicePrefix
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.client != nil {
		return store, nil
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store.client = client
	return store, nil
}

func newClient(ctx context.Context, cfg *infraconfig.StorageConfig) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	// without static keys the default chain applies (env, shared profile, instance role)
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("storage access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// InvoiceKey returns the object key of an invoice
func (s *S3DocumentStore) InvoiceKey(hash string) string {
	return s.prefix + hash + ".pdf"
}

// InvoiceDocument returns the base64 encoded invoice of order. An order
// without an invoice hash, or whose invoice was never uploaded, yields "".
func (s *S3DocumentStore) InvoiceDocument(ctx context.Context, order warehouse.OrderRecord) (string, error) {
	if order.InvoiceHash == "" {
		return "", nil
	}
	key := s.InvoiceKey(order.InvoiceHash)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			logger.For(ctx, s.logger).Debug("No invoice stored for order",
				zap.Int64("order_id", order.OrderID),
				zap.String("key", key),
			)
			return "", nil
		}
		return "", fmt.Errorf("failed to get invoice %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read invoice %s: %w", key, err)
	}
	if len(data) > maxDocumentSize {
		return "", fmt.Errorf("%w: %s", ErrDocumentTooLarge, key)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// UploadInvoice stores a rendered invoice under its hash
func (s *S3DocumentStore) UploadInvoice(ctx context.Context, hash string, data []byte) error {
	if hash == "" {
		return errors.New("invoice hash is required")
	}
	if len(data) > maxDocumentSize {
		return fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(data))
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.InvoiceKey(hash)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(invoiceContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload invoice: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3DocumentStore) Bucket() string {
	return s.bucket
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}
	// some S3-compatible services only report the code in the message
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}
