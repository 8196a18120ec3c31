// Package project 管理单次请求的临时工作目录。
package project

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
)

// ArchiveExtension 失败请求归档的扩展名
const ArchiveExtension = ".tar.zst"

// Options 工作目录选项
type Options struct {
	// CacheFolder 临时目录所在位置，空表示系统临时目录
	CacheFolder string
	// ErrorsFolder 失败请求的归档位置，空表示不归档
	ErrorsFolder string
	// DeleteOnClose 关闭时删除工作目录
	DeleteOnClose bool
	// MaxFileSize 上传文件大小上限（字节），0 表示不限制
	MaxFileSize int64
}

// Factory 工作目录工厂
type Factory struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewFactory 创建工厂
func NewFactory(opts Options, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheFolder == "" {
		opts.CacheFolder = os.TempDir()
	}
	return &Factory{opts: opts, logger: logger, now: time.Now}
}

// Project 单次请求的工作目录，包含上传的文件
type Project struct {
	id      string
	folder  string
	file    string
	factory *Factory
	closed  bool
}

// Create 在缓存目录下新建工作目录并写入上传文件
func (f *Factory) Create(filename string, r io.Reader) (*Project, error) {
	name := filepath.Base(filepath.Clean(filename))
	if filename == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, errs.InvalidInput("invalid file name")
	}

	id := uuid.NewString()
	folder := filepath.Join(f.opts.CacheFolder, id)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create project folder: %w", err)
	}
	p := &Project{id: id, folder: folder, file: filepath.Join(folder, name), factory: f}

	if err := p.write(r); err != nil {
		_ = os.RemoveAll(folder)
		return nil, err
	}
	f.logger.Debug("project created", zap.String("id", id), zap.String("file", name))
	return p, nil
}

func (p *Project) write(r io.Reader) error {
	out, err := os.Create(p.file)
	if err != nil {
		return fmt.Errorf("create project file: %w", err)
	}
	defer out.Close()

	limit := p.factory.opts.MaxFileSize
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	if limit > 0 && n > limit {
		return errs.InvalidInput("file too big, max allowed size is %d bytes", limit).WithFile(filepath.Base(p.file))
	}
	return out.Close()
}

// ID 工作目录标识
func (p *Project) ID() string { return p.id }

// Folder 工作目录路径
func (p *Project) Folder() string { return p.folder }

// File 上传的文件
func (p *Project) File() string { return p.file }

// Close 结束请求。失败时归档到错误目录，配置了 DeleteOnClose 时删除工作目录。
func (p *Project) Close(success bool) error {
	if p.closed {
		return nil
	}
	p.closed = true

	opts := p.factory.opts
	logger := p.factory.logger.With(zap.String("id", p.id))

	var archiveErr error
	if !success && opts.ErrorsFolder != "" {
		dest, err := p.archive(opts.ErrorsFolder)
		if err != nil {
			archiveErr = fmt.Errorf("archive failed project: %w", err)
			logger.Error("cannot backup failed project", zap.Error(err))
		} else {
			logger.Info("failed project archived", zap.String("archive", dest))
		}
	}

	if opts.DeleteOnClose {
		if err := os.RemoveAll(p.folder); err != nil {
			logger.Error("cannot delete project folder", zap.Error(err))
			if archiveErr == nil {
				return fmt.Errorf("delete project folder: %w", err)
			}
		}
	}
	return archiveErr
}

// ArchivePath 失败请求归档的位置：<errors>/<yyyy-mm-dd>/<HH-MM>-<id>.tar.zst
func ArchivePath(errorsFolder, id string, at time.Time) string {
	return filepath.Join(errorsFolder, at.Format("2006-01-02"), at.Format("15-04")+"-"+id+ArchiveExtension)
}

func (p *Project) archive(errorsFolder string) (string, error) {
	dest := ArchivePath(errorsFolder, p.id, p.factory.now())
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if err := writeArchive(out, p.folder, p.id); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return "", err
	}
	return dest, out.Close()
}

// writeArchive 把目录写成 zstd 压缩的 tar，条目以 prefix 为根
func writeArchive(w io.Writer, folder, prefix string) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !d.IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		if d.IsDir() {
			hdr.Name = strings.TrimSuffix(hdr.Name, "/") + "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
