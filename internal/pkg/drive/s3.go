package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3Config holds the settings of an S3-compatible bucket
type S3Config struct {
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	Endpoint   string
	PresignTTL time.Duration
}

// S3Client stores files in an S3-compatible bucket. Name and description
// travel as object metadata.
type S3Client struct {
	s3       *s3.S3
	uploader *s3manager.Uploader
	cfg      S3Config
	logger   zerolog.Logger
}

const (
	metaName        = "Name"
	metaDescription = "Description"
)

// NewS3Client creates the session and clients
func NewS3Client(cfg S3Config, logger zerolog.Logger) (*S3Client, error) {
	awsCfg := &aws.Config{
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:      aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = time.Hour
	}

	logger.Info().Str("bucket", cfg.Bucket).Msg("S3 drive client initialized")
	return &S3Client{
		s3:       s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func isS3NotFound(err error) bool {
	var aerr awserr.RequestFailure
	if errors.As(err, &aerr) && aerr.StatusCode() == http.StatusNotFound {
		return true
	}
	var ae awserr.Error
	return errors.As(err, &ae) && (ae.Code() == s3.ErrCodeNoSuchKey || ae.Code() == "NotFound")
}

func (c *S3Client) presign(key string) string {
	req, _ := c.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	u, err := req.Presign(c.cfg.PresignTTL)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to presign URL")
		return ""
	}
	return u
}

func metaValue(m map[string]*string, k string) string {
	if v, ok := m[k]; ok && v != nil {
		if decoded, err := url.QueryUnescape(*v); err == nil {
			return decoded
		}
		return *v
	}
	return ""
}

// Upload streams r into a new object
func (c *S3Client) Upload(ctx context.Context, r io.Reader, in UploadInput) (*File, error) {
	key := uuid.New().String()
	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(in.MimeType),
		Metadata: map[string]*string{
			metaName:        aws.String(url.QueryEscape(in.Name)),
			metaDescription: aws.String(url.QueryEscape(in.Description)),
		},
	})
	if err != nil {
		c.logger.Error().Err(err).Str("name", in.Name).Msg("Failed to upload object")
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return c.Get(ctx, key)
}

// Get heads the object; nil when it does not exist
func (c *S3Client) Get(ctx context.Context, id string) (*File, error) {
	head, err := c.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	link := c.presign(id)
	f := &File{
		ID:             id,
		Name:           metaValue(head.Metadata, metaName),
		MimeType:       aws.StringValue(head.ContentType),
		Size:           aws.Int64Value(head.ContentLength),
		Description:    metaValue(head.Metadata, metaDescription),
		WebViewLink:    link,
		WebContentLink: link,
		ModifiedTime:   aws.TimeValue(head.LastModified),
	}
	f.CreatedTime = f.ModifiedTime
	return f, nil
}

// Download opens the object body
func (c *S3Client) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := c.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, fmt.Errorf("object %s not found", id)
	}
	out, err := c.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return out.Body, f, nil
}

// Update rewrites the object metadata in place with a self-copy
func (c *S3Client) Update(ctx context.Context, id, name, description string) (*File, error) {
	current, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("object %s not found", id)
	}
	if name == "" {
		name = current.Name
	}
	if description == "" {
		description = current.Description
	}

	source := c.cfg.Bucket + "/" + strings.TrimPrefix(id, "/")
	_, err = c.s3.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(c.cfg.Bucket),
		Key:               aws.String(id),
		CopySource:        aws.String(url.PathEscape(source)),
		ContentType:       aws.String(current.MimeType),
		MetadataDirective: aws.String(s3.MetadataDirectiveReplace),
		Metadata: map[string]*string{
			metaName:        aws.String(url.QueryEscape(name)),
			metaDescription: aws.String(url.QueryEscape(description)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update object metadata: %w", err)
	}
	return c.Get(ctx, id)
}

// Delete removes the object
func (c *S3Client) Delete(ctx context.Context, id string) (bool, error) {
	_, err := c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// Share is not available on plain object storage; links are presigned instead
func (c *S3Client) Share(context.Context, string, string, string) (bool, error) {
	return false, ErrUnsupported
}
