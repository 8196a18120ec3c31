package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
)

// ResolveFolder 检查配置的目录。空路径表示功能关闭并返回空串；
// 目录不存在时按 create 创建或报错；无法读取、需要写入但无法写入时报错。
func ResolveFolder(path string, create, needWrite bool) (string, error) {
	if path == "" {
		return "", nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return "", errs.Configuration("%s is not a folder", path)
	case err != nil && !os.IsNotExist(err):
		return "", errs.Wrap(err, errs.CodeConfiguration, "cannot access folder "+path)
	case err != nil:
		if !create {
			return "", errs.Configuration("folder %s provided in config file does not exist", path)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", errs.Wrap(err, errs.CodeConfiguration, "failed to create path "+path)
		}
	}

	dir, err := os.Open(path)
	if err != nil {
		return "", errs.Configuration("no read permission for folder %s", path)
	}
	_, err = dir.Readdirnames(1)
	dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errs.Configuration("no read permission for folder %s", path)
	}

	if needWrite {
		probe, err := os.CreateTemp(path, ".write-probe-*")
		if err != nil {
			return "", errs.Configuration("no write permission for folder %s", path)
		}
		probe.Close()
		_ = os.Remove(probe.Name())
	}
	return path, nil
}

// ResolveFolders 校验配置中的所有目录。缓存目录无效或为空时退回系统临时目录，
// 错误目录和自定义断句目录为空时对应功能关闭。
func (c *Config) ResolveFolders(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := ResolveFolder(c.CacheFolder, true, true)
	if err != nil || cache == "" {
		logger.Warn("cache_folder empty or invalid, caching in OS temp folder", zap.Error(err))
		cache = os.TempDir()
	}
	c.CacheFolder = cache

	if c.ErrorsFolder, err = ResolveFolder(c.ErrorsFolder, true, true); err != nil {
		return fmt.Errorf("errors_folder: %w", err)
	}
	if c.ErrorsFolder == "" {
		logger.Warn("errors_folder empty, errors backup disabled")
	}

	if c.CustomSegmentationFolder, err = ResolveFolder(c.CustomSegmentationFolder, false, false); err != nil {
		return fmt.Errorf("custom_segmentation_folder: %w", err)
	}
	if c.CustomSegmentationFolder == "" {
		logger.Warn("custom_segmentation_folder empty, custom segmentation disabled")
	}
	return nil
}
