// Package packager zips tool folders for upload.
package packager

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"weni/pkg/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
)

const subsystem = "Packager"

// DefaultExcludes are never packaged.
var DefaultExcludes = []string{
	"**/__pycache__/**",
	"**/*.zip",
}

// Archive is a zipped tool folder held in memory.
type Archive struct {
	// Name is the file name reported on upload, "<key>.zip".
	Name  string
	Files int
	data  []byte
}

// Reader returns a fresh reader over the archive bytes.
func (a *Archive) Reader() io.Reader {
	return bytes.NewReader(a.data)
}

// Size returns the archive size in bytes.
func (a *Archive) Size() int {
	return len(a.data)
}

// Package zips every file below dir into an in-memory archive named after
// key. Paths matching DefaultExcludes or extra are skipped. Entry names
// are relative to dir and use forward slashes.
func Package(key, dir string, extra ...string) (*Archive, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("Folder %s not found", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder", dir)
	}

	excludes := append(append([]string{}, DefaultExcludes...), extra...)
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	count := 0

	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if excluded(name, excludes) {
			logging.Debug(subsystem, "skipping %s", name)
			return nil
		}
		if err := addFile(writer, path, name); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to create zip file for folder %s: %w", dir, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("Failed to create zip file for folder %s: %w", dir, err)
	}

	logging.Debug(subsystem, "packaged %s: %d files, %d bytes", dir, count, buf.Len())
	return &Archive{Name: key + ".zip", Files: count, data: buf.Bytes()}, nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func addFile(writer *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
