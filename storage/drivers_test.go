package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PresignerSignsOffline(t *testing.T) {
	p := NewS3Presigner(S3Config{
		Endpoint:        "https://s3.test.local",
		Region:          "us-east-1",
		Bucket:          "cccd-docs",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})

	putURL, err := p.PresignPut(context.Background(), "uploads/u1/k-cccd.pdf", "application/pdf", 2048, UploadURLTTL)
	require.NoError(t, err)
	u, err := url.Parse(putURL)
	require.NoError(t, err)
	assert.Equal(t, "/cccd-docs/uploads/u1/k-cccd.pdf", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, strings.ToLower(u.Query().Get("X-Amz-SignedHeaders")), "content-type")

	getURL, err := p.PresignGet(context.Background(), "uploads/u1/k-cccd.pdf", DownloadURLTTL)
	require.NoError(t, err)
	u, err = url.Parse(getURL)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestOSSPresignerSignsOffline(t *testing.T) {
	p, err := NewOSSPresigner(OSSConfig{
		Endpoint:        "https://oss-ap-southeast-1.aliyuncs.com",
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		Bucket:          "cccd-docs",
	})
	require.NoError(t, err)

	key := "uploads/u1/k-cccd.pdf"
	putURL, err := p.PresignPut(context.Background(), key, "application/pdf", 2048, UploadURLTTL)
	require.NoError(t, err)
	u, err := url.Parse(putURL)
	require.NoError(t, err)
	assert.Equal(t, "cccd-docs.oss-ap-southeast-1.aliyuncs.com", u.Host)
	assert.Equal(t, "/"+key, u.Path)
	assert.Contains(t, putURL, url.QueryEscape(key))
	assert.Equal(t, "ak", u.Query().Get("OSSAccessKeyId"))
	sig := u.Query().Get("Signature")
	require.NotEmpty(t, sig)

	// Chữ ký PUT gắn với Content-Type: đổi loại file thì chữ ký khác
	pngURL, err := p.PresignPut(context.Background(), key, "image/png", 2048, UploadURLTTL)
	require.NoError(t, err)
	pu, err := url.Parse(pngURL)
	require.NoError(t, err)
	assert.NotEqual(t, sig, pu.Query().Get("Signature"))

	getURL, err := p.PresignGet(context.Background(), "uploads/u1/k-cccd.pdf", DownloadURLTTL)
	require.NoError(t, err)
	assert.Contains(t, getURL, "Expires=")
}

func TestSupabasePresigner(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/upload/sign/"):
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url": "/object/upload/sign/cccd-docs/uploads/u1/k-cccd.pdf?token=up-token",
			})
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/"):
			_ = json.NewEncoder(w).Encode(map[string]string{
				"signedURL": "/object/sign/cccd-docs/uploads/u1/k-cccd.pdf?token=get-token",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewSupabasePresigner(srv.URL, "service-key", "cccd-docs")

	putURL, err := p.PresignPut(context.Background(), "uploads/u1/k-cccd.pdf", "application/pdf", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(putURL, srv.URL+"/storage/v1/object/upload/sign/"), putURL)
	assert.Contains(t, putURL, "token=up-token")

	getURL, err := p.PresignGet(context.Background(), "uploads/u1/k-cccd.pdf", DownloadURLTTL)
	require.NoError(t, err)
	assert.Contains(t, getURL, "token=get-token")

	require.Len(t, gotPaths, 2)
	assert.Contains(t, gotPaths[0], "cccd-docs/uploads/u1/k-cccd.pdf")
	assert.Contains(t, gotPaths[1], "cccd-docs/uploads/u1/k-cccd.pdf")
}
