package aws

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

var (
	Client *Clients
)

// Init sets up the shared s3 client and fails hard on bad sdk config.
func Init(ctx context.Context, bucketName, region string) {
	cli, err := New(ctx, bucketName, region)
	if err != nil {
		log.Fatalf("init aws clients:%v", err)
	}
	Client = cli
}

func New(ctx context.Context, bucketName, region string) (*Clients, error) {
	if bucketName == "" || region == "" {
		return nil, errors.New("s3 bucket or region not present")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws sdk config")
	}
	return &Clients{
		bucketName: bucketName,
		region:     region,
		s3Client:   s3.NewFromConfig(cfg),
	}, nil
}

type Clients struct {
	bucketName string
	region     string
	s3Client   *s3.Client
}

// PresignGet returns a time limited download url for key.
func (s *Clients) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	request, err := s3.NewPresignClient(s.s3Client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", errors.WithStackAndReport(err)
	}
	return request.URL, nil
}

func (s *Clients) PutFile(ctx context.Context, key, contentType string, file io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	}
	_, err := s.s3Client.PutObject(ctx, input)
	return errors.WrapAndReport(err, "put object to s3")
}

const (
	httpsStr  = "https://"
	s3DotStr  = ".s3."
	amazonStr = ".amazonaws.com/"
)

// PublicS3AccessURLFrom builds the virtual-hosted style url of key in the bucket.
func (s *Clients) PublicS3AccessURLFrom(key string) string {
	return PublicURL(s.bucketName, s.region, key)
}

func PublicURL(bucket, region, key string) string {
	var buf bytes.Buffer
	buf.WriteString(httpsStr)
	buf.WriteString(bucket)
	buf.WriteString(s3DotStr)
	buf.WriteString(region)
	buf.WriteString(amazonStr)
	buf.WriteString(key)
	return buf.String()
}
