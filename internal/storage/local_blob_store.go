package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type BlobStore interface {
	// 儲存檔案並回傳 reference（之後存到 image1 / image2）
	Put(ctx context.Context, filename string, body io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

type LocalBlobStoreImpl struct {
	baseDir string
}

func NewLocalBlobStore(baseDir string) (BlobStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBlobStoreImpl{baseDir: baseDir}, nil
}

// Put 以 uuid 加原始副檔名命名，避免覆蓋既有檔案
func (s *LocalBlobStoreImpl) Put(ctx context.Context, filename string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.baseDir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return name, nil
}

func (s *LocalBlobStoreImpl) Delete(ctx context.Context, ref string) error {
	// reference 只能是 baseDir 底下的檔名
	if ref == "" || ref != filepath.Base(ref) {
		return fmt.Errorf("invalid blob reference %q", ref)
	}

	err := os.Remove(filepath.Join(s.baseDir, ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
