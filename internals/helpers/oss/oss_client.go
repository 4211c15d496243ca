// file: internals/helpers/oss/oss_client.go
package oss

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	aliyun "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/helpers/logger"
)

const maxUploadSize = int64(5 * 1024 * 1024)

var ErrNotConfigured = fmt.Errorf("object storage is not configured (ALI_OSS_*)")

type Service struct {
	Bucket     *aliyun.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
	Prefix     string // e.g. "members"
}

// NewService returns ErrNotConfigured when the ALI_OSS_* keys are missing so
// the server can still boot without storage.
func NewService(cfg *configs.Config, prefix string) (*Service, error) {
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKey == "" || cfg.OSSSecretKey == "" || cfg.OSSBucket == "" {
		return nil, ErrNotConfigured
	}

	client, err := aliyun.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(cfg.OSSBucket); err != nil {
		if se, ok := err.(aliyun.ServiceError); ok && se.StatusCode == 403 {
			logger.L.Warn("[OSS] skip location check (AccessDenied)", zap.String("bucket", cfg.OSSBucket))
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		logger.L.Info("[OSS] bucket ready", zap.String("bucket", cfg.OSSBucket), zap.String("location", loc))
	}

	return &Service{
		Bucket:     bkt,
		Endpoint:   cfg.OSSEndpoint,
		BucketName: cfg.OSSBucket,
		PublicBase: strings.TrimRight(cfg.OSSPublicBase, "/"),
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// UploadImageAsWebP re-encodes to webp and returns the public URL.
func (s *Service) UploadImageAsWebP(ctx context.Context, r io.Reader, filename, keyPrefix string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxUploadSize {
		return "", fmt.Errorf("file too large (max %d bytes)", maxUploadSize)
	}

	webpData, err := ConvertToWebP(data, filename, PhotoOptions)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := s.buildObjectKey(base+".webp", keyPrefix)

	opts := []aliyun.Option{
		aliyun.WithContext(ctx),
		aliyun.ContentType("image/webp"),
		aliyun.ContentDisposition("inline"),
		aliyun.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(webpData), opts...); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *Service) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *Service) buildObjectKey(filename, keyPrefix string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = "file"
	}
	parts := []string{}
	for _, p := range []string{s.Prefix, strings.Trim(keyPrefix, "/")} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := fmt.Sprintf("%s_%s_%s%s", safePart(base), time.Now().UTC().Format("20060102_150405"), randHex(3), ext)
	return strings.Join(append(parts, name), "/")
}

func safePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		if r == ' ' || r == '_' {
			return '-'
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
