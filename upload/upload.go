// Package upload 提供上传文件的暂存抽象。
//
// 摄取管道不关心文件物理存放在哪里：传输层把 multipart 文件交给
// IUploadStore 落位，拿回一个 File 描述（路径 + 原始文件名 + 大小），
// 再据此打开可读流喂给摄取器。
package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"purchasing/errors"
)

// File 一次已落位的上传文件
type File struct {
	// Path 相对上传根目录的存储路径，会作为采购单的文件引用被持久化
	Path string

	// OriginalName 客户端提交的原始文件名
	OriginalName string

	// Size 字节数
	Size int64
}

// IUploadStore 上传暂存契约
type IUploadStore interface {
	// Save 将 r 的内容落位为一个新文件
	Save(ctx context.Context, originalName string, r io.Reader) (*File, error)

	// Open 打开已落位文件的可读流，调用方负责 Close
	Open(f *File) (io.ReadCloser, error)
}

// DiskStore 基于本地磁盘的实现。
// 文件名加 uuid 前缀避免覆盖同名上传，原始文件名保留在后缀中。
type DiskStore struct {
	root string
}

// NewDiskStore 创建磁盘暂存，root 不存在时自动创建
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeUpload, "failed to create upload directory")
	}
	return &DiskStore{root: root}, nil
}

// Save 实现 IUploadStore
func (s *DiskStore) Save(ctx context.Context, originalName string, r io.Reader) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 只保留基础文件名，丢弃客户端可能携带的路径成分
	base := filepath.Base(originalName)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload.csv"
	}
	name := uuid.NewString() + "_" + base

	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeUpload, "failed to save uploaded file")
	}

	size, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, errors.WrapError(err, errors.ErrCodeUpload, "failed to save uploaded file")
	}

	return &File{
		Path:         filepath.Join(s.root, name),
		OriginalName: base,
		Size:         size,
	}, nil
}

// Open 实现 IUploadStore
func (s *DiskStore) Open(f *File) (io.ReadCloser, error) {
	rc, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeUpload, "failed to read uploaded file")
	}
	return rc, nil
}
