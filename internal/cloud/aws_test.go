package cloud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/pkg/models"
)

type fakeLister struct {
	err   error
	calls int
	max   int32
}

func (f *fakeLister) ListBuckets(_ context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	f.calls++
	f.max = aws.ToInt32(in.MaxBuckets)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.ListBucketsOutput{}, nil
}

func verifierWith(l *fakeLister) *AWSVerifier {
	return &AWSVerifier{
		timeout: time.Second,
		newClient: func(context.Context, models.Integration) (bucketLister, error) {
			return l, nil
		},
	}
}

func awsIntegration() models.Integration {
	return models.Integration{
		ID:          "int-1",
		Provider:    models.CloudAWS,
		Region:      "us-east-1",
		Credentials: models.Credentials{AccessKey: "AKIA", SecretKey: "secret"},
	}
}

func TestAWSVerifier_Success(t *testing.T) {
	l := &fakeLister{}
	if err := verifierWith(l).Verify(context.Background(), awsIntegration()); err != nil {
		t.Fatal(err)
	}
	if l.calls != 1 || l.max != 1 {
		t.Errorf("calls = %d, max = %d", l.calls, l.max)
	}
}

func TestAWSVerifier_Rejected(t *testing.T) {
	l := &fakeLister{err: &smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "key does not exist"}}

	err := verifierWith(l).Verify(context.Background(), awsIntegration())
	if !errors.Is(err, apperr.ErrCloudIntegration) {
		t.Fatalf("expected cloud integration error, got %v", err)
	}
	want := "Failed to integrate with AWS: InvalidAccessKeyId: key does not exist"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestAWSVerifier_ClientError(t *testing.T) {
	v := &AWSVerifier{
		timeout: time.Second,
		newClient: func(context.Context, models.Integration) (bucketLister, error) {
			return nil, errors.New("no region")
		},
	}
	if err := v.Verify(context.Background(), awsIntegration()); !errors.Is(err, apperr.ErrCloudIntegration) {
		t.Fatalf("expected cloud integration error, got %v", err)
	}
}

func TestAWSVerifier_NonAWS(t *testing.T) {
	l := &fakeLister{}
	integ := awsIntegration()
	integ.Provider = models.CloudAzure

	if err := verifierWith(l).Verify(context.Background(), integ); !errors.Is(err, apperr.ErrCloudIntegration) {
		t.Fatalf("expected cloud integration error, got %v", err)
	}
	if l.calls != 0 {
		t.Error("azure integration should not reach AWS")
	}
}

func TestNewAWSVerifier(t *testing.T) {
	v := NewAWSVerifier("http://localhost:4566")
	if v.endpoint != "http://localhost:4566" || v.newClient == nil || v.timeout == 0 {
		t.Errorf("unexpected verifier: %+v", v)
	}
}
