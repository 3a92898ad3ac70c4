package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabasePresigner dùng Supabase Storage. URL upload do Supabase cấp có thời hạn cố định
// phía server và không khóa Content-Length.
type SupabasePresigner struct {
	client  *storage_go.Client
	baseURL string
	bucket  string
}

// NewSupabasePresigner nhận SUPABASE_URL gốc (không kèm /storage/v1).
func NewSupabasePresigner(supabaseURL, supabaseKey, bucket string) *SupabasePresigner {
	base := strings.TrimRight(supabaseURL, "/") + "/storage/v1"
	return &SupabasePresigner{
		client:  storage_go.NewClient(base, supabaseKey, nil),
		baseURL: base,
		bucket:  bucket,
	}
}

func (p *SupabasePresigner) PresignPut(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	resp, err := p.client.CreateSignedUploadUrl(p.bucket, key)
	if err != nil {
		return "", fmt.Errorf("supabase signed upload url: %w", err)
	}
	if resp.Url == "" {
		return "", fmt.Errorf("supabase không trả về url upload cho %s", key)
	}
	// storage-go trả url upload tương đối (/object/upload/sign/...)
	if strings.HasPrefix(resp.Url, "http://") || strings.HasPrefix(resp.Url, "https://") {
		return resp.Url, nil
	}
	return p.baseURL + resp.Url, nil
}

func (p *SupabasePresigner) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	resp, err := p.client.CreateSignedUrl(p.bucket, key, int(ttl/time.Second))
	if err != nil {
		return "", fmt.Errorf("supabase signed url: %w", err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("supabase không trả về signed url cho %s", key)
	}
	return resp.SignedURL, nil
}
