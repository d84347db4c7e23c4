package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the slice of the S3 API the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds construction parameters for the default S3 client.
// Credentials always come from the default AWS chain.
type S3Config struct {
	Region    string // Defaults to us-east-1
	Endpoint  string // Optional, for MinIO and other S3-compatible stores
	PathStyle bool
}

func (ld *loader) readS3(ctx context.Context, source string) ([]Record, error) {
	bucket, key, err := parseS3URL(source)
	if err != nil {
		return nil, err
	}

	getter := ld.getter
	if getter == nil {
		getter, err = newS3Client(ctx, ld.s3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
	}

	out, err := getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return ParseCSV(out.Body)
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// parseS3URL splits "s3://bucket/some/key.csv" into bucket and key.
func parseS3URL(source string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(source, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 source needs bucket and key: %s", ErrUnsupportedSource, source)
	}
	return bucket, key, nil
}
