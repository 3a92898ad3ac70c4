package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

type OSSPresigner struct {
	bucket *oss.Bucket
}

func NewOSSPresigner(cfg OSSConfig) (*OSSPresigner, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss.Bucket(%s): %w", cfg.Bucket, err)
	}
	return &OSSPresigner{bucket: bkt}, nil
}

func (p *OSSPresigner) PresignPut(_ context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	return p.bucket.SignURL(key, oss.HTTPPut, int64(ttl/time.Second),
		oss.ContentType(contentType),
		oss.ContentLength(size),
	)
}

func (p *OSSPresigner) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return p.bucket.SignURL(key, oss.HTTPGet, int64(ttl/time.Second))
}
