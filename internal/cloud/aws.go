// Package cloud performs live credential checks against cloud providers.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// bucketLister is the part of *s3.Client the verifier calls.
type bucketLister interface {
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// AWSVerifier checks AWS integrations by listing S3 buckets with the
// stored static credentials.
type AWSVerifier struct {
	endpoint  string
	timeout   time.Duration
	newClient func(ctx context.Context, integ models.Integration) (bucketLister, error)
}

// NewAWSVerifier returns a verifier. endpoint overrides the S3 endpoint and
// may be empty.
func NewAWSVerifier(endpoint string) *AWSVerifier {
	v := &AWSVerifier{endpoint: endpoint, timeout: 10 * time.Second}
	v.newClient = v.s3Client
	return v
}

func (v *AWSVerifier) s3Client(ctx context.Context, integ models.Integration) (bucketLister, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(integ.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			integ.Credentials.AccessKey, integ.Credentials.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var opts []func(*s3.Options)
	if v.endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(v.endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, opts...), nil
}

// Verify returns a CloudIntegration error when AWS rejects the credentials
// or cannot be reached.
func (v *AWSVerifier) Verify(ctx context.Context, integ models.Integration) error {
	if integ.Provider != models.CloudAWS {
		return apperr.CloudIntegration(string(integ.Provider), "live verification not supported")
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	client, err := v.newClient(ctx, integ)
	if err != nil {
		return failure(err)
	}
	if _, err := client.ListBuckets(ctx, &s3.ListBucketsInput{MaxBuckets: aws.Int32(1)}); err != nil {
		return failure(err)
	}
	return nil
}

func failure(err error) error {
	details := err.Error()
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		details = fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return apperr.CloudIntegration("AWS", details)
}
