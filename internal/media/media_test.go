package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestNewKey(t *testing.T) {
	key := NewKey("supplements", "photo.jpg")
	if !strings.HasPrefix(key, "supplements/") {
		t.Errorf("key = %q, want supplements/ prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want .jpg suffix", key)
	}
	if key == NewKey("supplements", "photo.jpg") {
		t.Error("keys should be unique per call")
	}
}

func TestDiskRoundTrip(t *testing.T) {
	d := NewDisk(t.TempDir())
	ctx := context.Background()

	key := NewKey("intakes", "confirm.png")
	if err := d.Put(ctx, key, "image/png", strings.NewReader("fake png bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}

	body, contentType, err := d.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "fake png bytes" {
		t.Errorf("data = %q", data)
	}
	if contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", contentType)
	}

	if err := d.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := d.Get(ctx, key); err == nil {
		t.Error("expected error after delete")
	}
}

func TestDiskDeleteMissingIsNoOp(t *testing.T) {
	d := NewDisk(t.TempDir())
	if err := d.Delete(context.Background(), "intakes/nope.png"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestDiskRejectsEscapingKeys(t *testing.T) {
	d := NewDisk(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "/etc/passwd"} {
		if err := d.Put(ctx, key, "text/plain", strings.NewReader("x")); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = data
	if input.ContentType != nil {
		f.types[*input.Key] = *input.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*input.Key]
	if !ok {
		return nil, io.EOF
	}
	contentType := f.types[*input.Key]
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader(string(data))),
		ContentType: &contentType,
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	client := newFakeS3()
	storage := &S3Storage{client: client, bucket: "test-bucket"}
	ctx := context.Background()

	if err := storage.Put(ctx, "supplements/a.jpg", "image/jpeg", strings.NewReader("jpeg bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}

	body, contentType, err := storage.Get(ctx, "supplements/a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "jpeg bytes" {
		t.Errorf("data = %q", data)
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q", contentType)
	}

	if err := storage.Delete(ctx, "supplements/a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := storage.Get(ctx, "supplements/a.jpg"); err == nil {
		t.Error("expected error after delete")
	}
}
