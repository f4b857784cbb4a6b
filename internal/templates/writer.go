package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Export writes the embedded template set under dir so it can be edited and
// loaded back with LoadDir. Existing files are kept unless force is set.
// It returns the written paths in walk order.
func Export(dir string, force bool) ([]string, error) {
	if dir == "" {
		return nil, errors.New("export directory is required")
	}
	src := DefaultFS()
	var written []string
	err := fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}
		full, err := writeTemplateFile(dir, name, data, force)
		if err != nil {
			return err
		}
		written = append(written, full)
		return nil
	})
	if err != nil {
		return written, err
	}
	return written, nil
}

// writeTemplateFile writes data to relativePath under root.
//
// The path must stay under root. Parent directories are created. Without
// force an existing file is an error.
func writeTemplateFile(root, relativePath string, data []byte, force bool) (string, error) {
	if relativePath == "" {
		return "", errors.New("output path is required")
	}

	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return "", errors.New("output path must be relative to the export directory")
	}

	fullPath := filepath.Join(root, cleanRel)
	rel, err := filepath.Rel(root, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New("output path escapes the export directory")
	}

	if err = os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	// #nosec G304 -- fullPath is validated to stay under root.
	file, err := os.OpenFile(fullPath, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, syscall.EEXIST) {
			return "", fmt.Errorf("file already exists: %s", fullPath)
		}
		return "", fmt.Errorf("write output file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return fullPath, nil
}
