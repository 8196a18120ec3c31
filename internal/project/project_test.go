package project

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
)

func TestCreate(t *testing.T) {
	cache := t.TempDir()
	f := NewFactory(Options{CacheFolder: cache}, nil)

	p, err := f.Create("../docs/report.docx", strings.NewReader("payload"))
	require.NoError(t, err)

	assert.Equal(t, cache, filepath.Dir(p.Folder()))
	assert.Equal(t, filepath.Join(p.Folder(), "report.docx"), p.File())
	data, err := os.ReadFile(p.File())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	other, err := f.Create("report.docx", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, p.ID(), other.ID())
}

func TestCreateInvalidName(t *testing.T) {
	f := NewFactory(Options{CacheFolder: t.TempDir()}, nil)
	for _, name := range []string{"", ".", ".."} {
		_, err := f.Create(name, strings.NewReader("x"))
		assert.True(t, errors.Is(err, errs.ErrInvalidInput), name)
	}
}

func TestCreateTooBig(t *testing.T) {
	cache := t.TempDir()
	f := NewFactory(Options{CacheFolder: cache, MaxFileSize: 4}, nil)

	_, err := f.Create("big.txt", strings.NewReader("12345"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
	assert.Contains(t, err.Error(), "file too big")

	entries, err := os.ReadDir(cache)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.Create("ok.txt", strings.NewReader("1234"))
	assert.NoError(t, err)
}

func TestCloseSuccessKeepsNoArchive(t *testing.T) {
	errorsDir := t.TempDir()
	f := NewFactory(Options{CacheFolder: t.TempDir(), ErrorsFolder: errorsDir, DeleteOnClose: true}, nil)

	p, err := f.Create("a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, p.Close(true))

	assert.NoDirExists(t, p.Folder())
	entries, err := os.ReadDir(errorsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCloseWithoutDelete(t *testing.T) {
	f := NewFactory(Options{CacheFolder: t.TempDir()}, nil)
	p, err := f.Create("a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, p.Close(false))
	assert.FileExists(t, p.File())
}

func TestCloseFailureArchives(t *testing.T) {
	errorsDir := t.TempDir()
	f := NewFactory(Options{CacheFolder: t.TempDir(), ErrorsFolder: errorsDir, DeleteOnClose: true}, nil)
	at := time.Date(2024, 3, 9, 7, 5, 0, 0, time.Local)
	f.now = func() time.Time { return at }

	p, err := f.Create("a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(p.Folder(), "pack"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.Folder(), "pack", "manifest.rkm"), []byte("<manifest/>"), 0o644))

	require.NoError(t, p.Close(false))
	assert.NoDirExists(t, p.Folder())

	archive := ArchivePath(errorsDir, p.ID(), at)
	assert.Equal(t, filepath.Join(errorsDir, "2024-03-09", "07-05-"+p.ID()+".tar.zst"), archive)

	files := readArchive(t, archive)
	assert.Equal(t, "hello", files[p.ID()+"/a.txt"])
	assert.Equal(t, "<manifest/>", files[p.ID()+"/pack/manifest.rkm"])

	// 重复关闭不做任何事
	assert.NoError(t, p.Close(false))
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	files := make(map[string]string)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = string(data)
	}
	return files
}
