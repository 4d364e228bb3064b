package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ReportArchive keeps a copy of every generated report export in S3. It is
// optional; a nil archive means exports are only streamed to the client.
type ReportArchive struct {
	client *s3.Client
	bucket string
}

func NewReportArchive(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*ReportArchive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &ReportArchive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Store uploads a generated report under reports/<entity>/<uuid>.<ext> and
// returns the object key.
func (a *ReportArchive) Store(ctx context.Context, entity, ext, contentType string, body []byte) (string, error) {
	key := "reports/" + entity + "/" + uuid.New().String() + "." + ext
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
