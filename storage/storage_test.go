package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFromRef(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "/uploads/abc.png", want: "abc.png"},
		{ref: "abc.png", want: "abc.png"},
		{ref: "/uploads/../etc/passwd", wantErr: true},
		{ref: "/uploads/a/b.png", wantErr: true},
		{ref: "/etc/passwd", wantErr: true},
		{ref: "/uploads/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := KeyFromRef(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewKeyKeepsSafeExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(NewKey("Photo.JPG"), ".jpg"))
	assert.NotContains(t, NewKey("evil.p/h p"), "/")
	assert.NotEqual(t, NewKey("a.txt"), NewKey("a.txt"))
}

func exerciseStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	ref, err := store.Put(ctx, "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, RefPrefix))
	assert.True(t, strings.HasSuffix(ref, ".txt"))

	blob, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), blob.Data)
	assert.Contains(t, blob.ContentType, "text/plain")

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)

	// deleting twice is not an error
	assert.NoError(t, store.Delete(context.Background(), "/uploads/missing.png"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := &S3Store{client: fake, bucket: "notes"}
	exerciseStore(t, store)

	ref, err := store.Put(context.Background(), "a.png", []byte{1})
	require.NoError(t, err)
	key, _ := KeyFromRef(ref)
	assert.Contains(t, fake.objects, "uploads/"+key)
	assert.Equal(t, "image/png", fake.types["uploads/"+key])

	// a stored object's own metadata is not trusted
	fake.types["uploads/"+key] = "text/html"
	blob, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
}

func TestInlineSafe(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"application/pdf", true},
		{"text/plain; charset=utf-8", true},
		{"text/html; charset=utf-8", false},
		{"image/svg+xml", false},
		{"application/xhtml+xml", false},
		{"application/octet-stream", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, InlineSafe(tt.contentType))
		})
	}
}

func TestHTMLUploadIsNotInlineSafe(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "evil.html", []byte("<script>alert(1)</script>"))
	require.NoError(t, err)
	blob, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.False(t, InlineSafe(blob.ContentType))
}
