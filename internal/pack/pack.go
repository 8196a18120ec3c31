// Package pack 描述引擎抽取结果在磁盘上的布局：
//
//	pack/
//	  original/<文件名>
//	  work/<文件名>.xlf
//	  done/<文件名>      (合并后由引擎写入)
//	  manifest.rkm
package pack

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/manifest"
)

// 目录与文件名常量
const (
	FolderName     = "pack"
	OriginalFolder = "original"
	WorkFolder     = "work"
	DoneFolder     = "done"
	WorkExtension  = ".xlf"
)

// Pack 一次抽取得到的打包目录
type Pack struct {
	folder   string
	filename string
}

// Create 在 parent 下新建打包目录骨架，目录已存在时报错
func Create(parent, filename string) (*Pack, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	folder := filepath.Join(parent, FolderName)
	if err := os.Mkdir(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create pack folder: %w", err)
	}
	for _, sub := range []string{OriginalFolder, WorkFolder} {
		if err := os.Mkdir(filepath.Join(folder, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create pack folder: %w", err)
		}
	}
	return &Pack{folder: folder, filename: filename}, nil
}

// Open 打开已存在的打包目录并校验布局
func Open(folder string) (*Pack, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, errs.InvalidInput("pack folder %q does not exist", folder)
	}
	if _, err := os.Stat(filepath.Join(folder, manifest.FileName)); err != nil {
		return nil, errs.InvalidInput("pack folder %q has no manifest", folder)
	}

	entries, err := os.ReadDir(filepath.Join(folder, OriginalFolder))
	if err != nil {
		return nil, errs.InvalidInput("pack folder %q has no original folder", folder)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	if len(files) != 1 {
		return nil, errs.InvalidInput("pack folder %q must contain exactly one original file, found %d", folder, len(files))
	}

	p := &Pack{folder: folder, filename: files[0]}
	if _, err := os.Stat(p.Xlf()); err != nil {
		return nil, errs.InvalidInput("pack folder %q has no work file for %q", folder, files[0])
	}
	return p, nil
}

// ValidateFilename 拒绝为空、含路径分隔符或指向上级目录的文件名
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return errs.Corrupt("invalid original filename %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return errs.Corrupt("original filename %q must not contain path separators", name)
	}
	return nil
}

// Folder 打包目录
func (p *Pack) Folder() string { return p.folder }

// Filename 原始文件名
func (p *Pack) Filename() string { return p.filename }

// OriginalFile 原始文件路径
func (p *Pack) OriginalFile() string {
	return filepath.Join(p.folder, OriginalFolder, p.filename)
}

// Manifest manifest 文件路径
func (p *Pack) Manifest() string {
	return filepath.Join(p.folder, manifest.FileName)
}

// Xlf 工作容器路径
func (p *Pack) Xlf() string {
	return filepath.Join(p.folder, WorkFolder, p.filename+WorkExtension)
}

// DerivedFile 合并后的目标文件路径
func (p *Pack) DerivedFile() string {
	return filepath.Join(p.folder, DoneFolder, p.filename)
}

// Digest 原始文件的 BLAKE3-256 摘要（十六进制）
func (p *Pack) Digest() (string, error) {
	data, err := os.ReadFile(p.OriginalFile())
	if err != nil {
		return "", err
	}
	return DigestBytes(data), nil
}

// DigestBytes 计算 BLAKE3-256 摘要（十六进制）
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
