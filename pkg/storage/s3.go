package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3SinkCredentials struct {
	AccessKey string
	SecretKey string
}

type S3SinkOpts struct {
	Bucket         string
	KeyPrefix      string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	Credentials    S3SinkCredentials
}

// S3Sink uploads every extracted artifact as an object under KeyPrefix.
type S3Sink struct {
	svc       *s3.Client
	uploader  *manager.Uploader
	bucket    string
	keyPrefix string
}

func NewS3Sink(ctx context.Context, opts S3SinkOpts) (*S3Sink, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if opts.Credentials.AccessKey != "" && opts.Credentials.SecretKey != "" {
		accessKey = opts.Credentials.AccessKey
		secretKey = opts.Credentials.SecretKey
	}

	cfg, err := getAWSConfig(accessKey, secretKey, opts.Region, opts.Endpoint)
	if err != nil {
		return nil, err
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	// Check to see if we have access to the bucket
	_, err = svc.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(opts.Bucket),
	})

	if err != nil {
		return nil, fmt.Errorf("cannot access bucket <%s>: %v", opts.Bucket, err)
	}

	return &S3Sink{
		svc:       svc,
		uploader:  manager.NewUploader(svc),
		bucket:    opts.Bucket,
		keyPrefix: opts.KeyPrefix,
	}, nil
}

func (s *S3Sink) Put(name string, data []byte) error {
	key := name
	if s.keyPrefix != "" {
		key = path.Join(s.keyPrefix, name)
	}

	_, err := s.uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}

func getAWSConfig(accessKey string, secretKey string, region string, endpoint string) (aws.Config, error) {
	var cfg aws.Config
	var err error
	var endpointResolver aws.EndpointResolverWithOptions

	if endpoint != "" {
		endpointResolver = aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: endpoint,
			}, nil
		})
	}

	if accessKey == "" || secretKey == "" {
		if endpointResolver != nil {
			cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region), config.WithEndpointResolverWithOptions(endpointResolver))
		} else {
			cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		}
	} else {
		credentials := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")

		if endpointResolver != nil {
			cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region), config.WithCredentialsProvider(credentials), config.WithEndpointResolverWithOptions(endpointResolver))
		} else {
			cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region), config.WithCredentialsProvider(credentials))
		}
	}

	return cfg, err
}
