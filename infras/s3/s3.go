package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"localguide/config"
	"localguide/infras/otel"
	"localguide/shared/constant"
)

const (
	otelAttrFileName = "file_name"
	otelAttrBucket   = "bucket"
)

// UploadResult identifies a stored object. PublicID is the object key and is what Delete expects.
type UploadResult struct {
	URL      string
	PublicID string
}

// S3 is the media gateway backed by an S3-compatible bucket.
type S3 interface {
	Upload(ctx context.Context, folder, fileName, contentType string, fileData []byte) (UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	GetObjectNameFromURL(url string) (objectName string)
}

type s3Impl struct {
	Client *s3.Client
	Config *config.Config
	otel   otel.Otel
}

func (svc *s3Impl) Upload(ctx context.Context, folder, fileName, contentType string, fileData []byte) (result UploadResult, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.Config.External.S3.BucketName
	objectKey := path.Join(folder, fileName)

	scope.SetAttributes(map[string]any{
		otelAttrFileName: objectKey,
		otelAttrBucket:   bucket,
	})

	fileReader := bytes.NewReader(fileData)

	_, err = svc.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(objectKey),
		Body:          fileReader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileReader.Size()),
	})
	if err != nil {
		log.Error().Err(err).Str("key", objectKey).Msg("failed to upload file to S3")

		return result, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return UploadResult{
		URL:      fmt.Sprintf("%s/%s", strings.TrimSuffix(svc.Config.External.S3.PublicDomain, "/"), objectKey),
		PublicID: objectKey,
	}, nil
}

func (svc *s3Impl) Delete(ctx context.Context, publicID string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.Config.External.S3.BucketName

	scope.SetAttributes(map[string]any{
		otelAttrFileName: publicID,
		otelAttrBucket:   bucket,
	})

	_, err = svc.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		log.Error().Err(err).Str("key", publicID).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// GetObjectNameFromURL recovers the object key from a public or API url, or returns empty.
func (svc *s3Impl) GetObjectNameFromURL(url string) (objectName string) {
	publicPrefix := strings.TrimSuffix(svc.Config.External.S3.PublicDomain, "/") + "/"
	if publicPrefix != "/" && strings.HasPrefix(url, publicPrefix) {
		return strings.TrimPrefix(url, publicPrefix)
	}

	bucketURL := fmt.Sprintf("%s/%s/", strings.TrimSuffix(svc.Config.External.S3.APIEndpoint, "/"), svc.Config.External.S3.BucketName)
	if strings.HasPrefix(url, bucketURL) {
		return strings.TrimPrefix(url, bucketURL)
	}

	return constant.Empty
}

func New(config *config.Config, otel otel.Otel) S3 {
	staticProvider := credentials.NewStaticCredentialsProvider(
		config.External.S3.AccessKeyID,
		config.External.S3.SecretAccessKey,
		"",
	)

	cfg, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithCredentialsProvider(staticProvider),
		awsConfig.WithRegion(config.External.S3.Region),
	)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := config.External.S3.APIEndpoint; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}

		o.UsePathStyle = true
	})

	return &s3Impl{
		Client: s3Client,
		Config: config,
		otel:   otel,
	}
}
