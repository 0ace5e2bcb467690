package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// memBucket is an in-memory objectAPI that serves listings two keys
// per page.
type memBucket struct {
	objects      map[string][]byte
	contentTypes map[string]string
	listCalls    int
	failList     error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	m.objects[key] = data
	m.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.listCalls++
	if m.failList != nil {
		return nil, m.failList
	}
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start, _ := strconv.Atoi(aws.ToString(in.ContinuationToken))
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestNewS3(t *testing.T) {
	if _, err := NewS3(S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}

	s, err := NewS3(S3Config{Bucket: "docs", Region: "ap-south-1", Endpoint: "http://localhost:9000", Prefix: "/finratio/"})
	if err != nil {
		t.Fatalf("NewS3 failed: %v", err)
	}
	if s.bucket != "docs" || s.root != "finratio" {
		t.Errorf("unexpected bucket %q root %q", s.bucket, s.root)
	}
}

func TestS3Storage_ObjectKeys(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "beta_values/TCS.NS.json", "beta_values/TCS.NS.json"},
		{"finratio", "beta_values/TCS.NS.json", "finratio/beta_values/TCS.NS.json"},
		{"finratio/", "/beta_values/TCS.NS.json", "finratio/beta_values/TCS.NS.json"},
	}
	for _, tt := range tests {
		s := newS3Storage(newMemBucket(), "docs", tt.prefix)
		key := s.objectKey(tt.path)
		if key != tt.want {
			t.Errorf("objectKey(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, key, tt.want)
		}
		if back := s.documentPath(key); back != strings.TrimPrefix(tt.path, "/") {
			t.Errorf("documentPath(%q) = %q", key, back)
		}
	}
}

func TestS3Storage_WriteRead(t *testing.T) {
	bucket := newMemBucket()
	s := newS3Storage(bucket, "docs", "finratio")
	ctx := context.Background()

	doc := []byte(`{"symbol":"TCS.NS","betas":{"Daily 1 Year":0.62}}`)
	if err := s.Write(ctx, "beta_values/TCS.NS.json", doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ct := bucket.contentTypes["finratio/beta_values/TCS.NS.json"]; ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	got, err := s.Read(ctx, "beta_values/TCS.NS.json")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("expected %s, got %s", doc, got)
	}

	if _, err := s.Read(ctx, "beta_values/NOPE.NS.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3Storage_ListPagesAndStripsPrefix(t *testing.T) {
	bucket := newMemBucket()
	for _, k := range []string{
		"finratio/basic_information/",
		"finratio/basic_information/INFY.NS.json",
		"finratio/basic_information/TCS.NS.json",
		"finratio/basic_information/WIPRO.NS.json",
		"finratio/beta_values/TCS.NS.json",
		"other/basic_information/X.NS.json",
	} {
		bucket.objects[k] = []byte(`{}`)
	}
	s := newS3Storage(bucket, "docs", "finratio")

	paths, err := s.List(context.Background(), "basic_information")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{
		"basic_information/INFY.NS.json",
		"basic_information/TCS.NS.json",
		"basic_information/WIPRO.NS.json",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("expected %v, got %v", want, paths)
	}
	if bucket.listCalls != 2 {
		t.Errorf("expected 2 pages, got %d", bucket.listCalls)
	}
}

func TestS3Storage_ListError(t *testing.T) {
	bucket := newMemBucket()
	bucket.failList = errors.New("access denied")
	s := newS3Storage(bucket, "docs", "")

	if _, err := s.List(context.Background(), "beta_values"); err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped list error, got %v", err)
	}
}
