package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSConfig carries the Alibaba Cloud OSS connection settings. PublicBase,
// when set, overrides the bucket endpoint URL for serving objects (CDN or
// custom domain in front of the bucket).
type OSSConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
}

type OSSStore struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	publicBase string
}

func NewOSSStore(cfg OSSConfig) (*OSSStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("oss: endpoint, access key, secret key and bucket are required")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return &OSSStore{
		bucket:     bkt,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

func (s *OSSStore) Put(key, contentType string, r io.Reader) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	opts := []oss.Option{}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return key, nil
}

func (s *OSSStore) Get(key string) (io.ReadCloser, error) {
	return s.bucket.GetObject(key)
}

func (s *OSSStore) Delete(key string) error {
	return s.bucket.DeleteObject(key)
}

func (s *OSSStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}
