// Package storage 把上传的商品图片落到本地磁盘，由静态路由对外提供访问。
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore 图片文件存取接口，application 层只依赖它
type FileStore interface {
	// Save 写入上传文件并返回对外 URL
	Save(file *multipart.FileHeader) (string, error)
	// Remove 按对外 URL 删除文件，文件缺失不算错误
	Remove(url string) error
}

type localStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地文件存储，目录不存在时自动建立
func NewLocalStore(dir, baseURL string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &localStore{dir: dir, baseURL: baseURL}, nil
}

func (s *localStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// 落盘文件名用 uuid，避免用户可控的原始文件名进路径
	name := uuid.New().String() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *localStore) Remove(url string) error {
	name := filepath.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
