// Package imageinfo reads the format and pixel size of a cover image from
// its header bytes.
package imageinfo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Image is a cover image together with what its header says about it.
type Image struct {
	Data   []byte
	Format string // decoder name: jpeg, png, gif, webp, bmp
	Width  int
	Height int
}

var mediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
	"bmp":  "bmp",
}

// Inspect decodes only the image header. The file name is never consulted, so
// a PNG saved as cover.jpg is reported as png.
func Inspect(data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if _, ok := mediaTypes[format]; !ok {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// MediaType returns the MIME type for the image format.
func (i *Image) MediaType() string { return mediaTypes[i.Format] }

// Ext returns the file extension, without dot, used inside the archive.
func (i *Image) Ext() string { return extensions[i.Format] }

// FileName returns the archive file name for the cover.
func (i *Image) FileName() string { return "cover." + i.Ext() }
