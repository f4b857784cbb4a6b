package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// MimeTypePath is the name of the first archive entry.
const MimeTypePath = "mimetype"

// Entry is one file of the archive. Method is zip.Store or zip.Deflate.
type Entry struct {
	Path   string
	Data   []byte
	Method uint16
}

// Archive is an ordered list of entries ready to be zipped.
type Archive struct {
	// Name is the suggested file name, e.g. "my-novel.epub".
	Name     string
	Entries  []Entry
	Modified time.Time
}

// Entry returns the entry stored under path.
func (a *Archive) Entry(path string) (Entry, bool) {
	for _, e := range a.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks the container invariants: exactly one mimetype entry, in
// first position, stored, with the exact media type; no duplicate paths.
func (a *Archive) Validate() error {
	if len(a.Entries) == 0 {
		return errors.PackagingError("archive has no entries").Build()
	}
	first := a.Entries[0]
	if first.Path != MimeTypePath {
		return errors.PackagingError("mimetype is not the first entry").WithContext("first", first.Path).Build()
	}
	if first.Method != zip.Store {
		return errors.PackagingError("mimetype entry must be stored").Build()
	}
	if string(first.Data) != MimeType {
		return errors.PackagingError("mimetype entry has wrong content").WithContext("content", string(first.Data)).Build()
	}
	seen := make(map[string]struct{}, len(a.Entries))
	for _, e := range a.Entries {
		if _, dup := seen[e.Path]; dup {
			return errors.PackagingError("duplicate archive path").WithContext("path", e.Path).Build()
		}
		seen[e.Path] = struct{}{}
	}
	return nil
}

// WriteTo zips the archive into w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for i, e := range a.Entries {
		var err error
		if i == 0 {
			err = writeStored(zw, e)
		} else {
			err = writeEntry(zw, e, a.Modified)
		}
		if err != nil {
			return cw.n, errors.WrapError(err, errors.CategoryPackaging, "write archive entry").
				Fatal().
				WithContext("path", e.Path).
				Build()
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, errors.WrapError(err, errors.CategoryPackaging, "finish archive").Fatal().Build()
	}
	return cw.n, nil
}

// writeStored writes e uncompressed without a data descriptor or extra
// field, which is what readers sniffing the mimetype expect.
func writeStored(zw *zip.Writer, e Entry) error {
	fh := &zip.FileHeader{
		Name:               e.Path,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(e.Data),
		CompressedSize64:   uint64(len(e.Data)),
		UncompressedSize64: uint64(len(e.Data)),
	}
	fw, err := zw.CreateRaw(fh)
	if err != nil {
		return err
	}
	_, err = fw.Write(e.Data)
	return err
}

func writeEntry(zw *zip.Writer, e Entry, modified time.Time) error {
	fh := &zip.FileHeader{Name: e.Path, Method: e.Method}
	if !modified.IsZero() {
		fh.Modified = modified
	}
	fw, err := zw.CreateHeader(fh)
	if err != nil {
		return err
	}
	_, err = fw.Write(e.Data)
	return err
}

// Bytes returns the zipped archive.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile zips the archive to path. The file is written next to its
// destination first and renamed into place.
func (a *Archive) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").Fatal().WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".novelbuilder-*.epub")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create temporary archive").Fatal().WithContext("path", dir).Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := a.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "close temporary archive").Fatal().Build()
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "chmod archive").Fatal().Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, fmt.Sprintf("move archive to %s", path)).Fatal().Build()
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
