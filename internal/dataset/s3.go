package dataset

import (
	"context"
	"fmt"
	"io"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the slice of the S3 API the source needs. *s3.Client
// satisfies it; tests substitute an in-memory fake.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads the five CSV dataset files from an S3 bucket. Object keys
// are Prefix + the standard file names.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Prefix string
}

// NewS3Source builds an S3Source with a client from the default AWS
// credential chain.
func NewS3Source(ctx context.Context, bucket, region, prefix string) (*S3Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Source{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

// Load fetches and decodes all five dataset objects.
func (s *S3Source) Load(ctx context.Context) (*Tables, error) {
	t := &Tables{}
	steps := []struct {
		file   string
		decode func(io.Reader) error
	}{
		{OrdersFile, func(r io.Reader) (err error) { t.Orders, err = DecodeOrders(r); return }},
		{OrderItemsFile, func(r io.Reader) (err error) { t.OrderItems, err = DecodeOrderItems(r); return }},
		{ProductsFile, func(r io.Reader) (err error) { t.Products, err = DecodeProducts(r); return }},
		{CustomersFile, func(r io.Reader) (err error) { t.Customers, err = DecodeCustomers(r); return }},
		{ReviewsFile, func(r io.Reader) (err error) { t.Reviews, err = DecodeReviews(r); return }},
	}
	for _, step := range steps {
		key := path.Join(s.Prefix, step.file)
		out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &s.Bucket,
			Key:    &key,
		})
		if err != nil {
			return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
		}
		err = step.decode(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", step.file, err)
		}
	}
	return t, nil
}
