package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/afero"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	lengths map[string]int64
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, lengths: map[string]int64{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[k] = b
	f.lengths[k] = aws.ToInt64(in.ContentLength)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type store interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func stores(t *testing.T) map[string]store {
	t.Helper()
	fsStore, err := NewFSStore(afero.NewMemMapFs(), "/var/lib/assetutil/blobs")
	if err != nil {
		t.Fatal(err)
	}
	return map[string]store{
		"fs": fsStore,
		"s3": &S3Store{client: newFakeS3(), bucket: "assets", prefix: "prod"},
	}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close() //nolint:errcheck // test cleanup
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestStore_PutOpen(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			n, err := s.Put(ctx, "attachments/ast-1/att-1/manual.pdf", strings.NewReader("hello"))
			if err != nil {
				t.Fatal(err)
			}
			if n != 5 {
				t.Errorf("size = %d, want 5", n)
			}

			rc, err := s.Open(ctx, "attachments/ast-1/att-1/manual.pdf")
			if err != nil {
				t.Fatal(err)
			}
			if got := readAll(t, rc); got != "hello" {
				t.Errorf("content = %q", got)
			}

			if _, err := s.Put(ctx, "attachments/ast-1/att-1/manual.pdf", strings.NewReader("v2")); err != nil {
				t.Fatal(err)
			}
			rc, err = s.Open(ctx, "attachments/ast-1/att-1/manual.pdf")
			if err != nil {
				t.Fatal(err)
			}
			if got := readAll(t, rc); got != "v2" {
				t.Errorf("content after overwrite = %q", got)
			}
		})
	}
}

func TestStore_OpenMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Open(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Put(ctx, "a/b", strings.NewReader("x")); err != nil {
				t.Fatal(err)
			}
			if err := s.Delete(ctx, "a/b"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Open(ctx, "a/b"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "/etc/passwd", "../x", "a/../../x", ".."} {
				if _, err := s.Put(context.Background(), key, strings.NewReader("x")); err == nil {
					t.Errorf("Put(%q) should fail", key)
				}
			}
		})
	}
}

func TestFSStore_DeleteMissing(t *testing.T) {
	s, err := NewFSStore(afero.NewMemMapFs(), "/blobs")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3Store_PrefixAndLength(t *testing.T) {
	f := newFakeS3()
	s := &S3Store{client: f, bucket: "assets", prefix: "prod"}
	if _, err := s.Put(context.Background(), "k/v.txt", strings.NewReader("abc")); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.objects["assets/prod/k/v.txt"]; !ok {
		t.Errorf("object not stored under prefix: %v", f.objects)
	}
	if f.lengths["assets/prod/k/v.txt"] != 3 {
		t.Errorf("content length = %d", f.lengths["assets/prod/k/v.txt"])
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error without bucket")
	}
}
