// Package image turns the inline images returned by the analysis API into
// something a terminal can show: format and size metadata plus a small
// half-block thumbnail.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	// MaxImageDimension is the largest width or height decoded for a thumbnail
	MaxImageDimension = 8192

	// upperHalfBlock draws the top pixel in the foreground color and the
	// bottom pixel in the background color.
	upperHalfBlock = "▀"
)

var (
	// ErrNotDataURI indicates the string does not start with "data:"
	ErrNotDataURI = errors.New("not a data URI")
	// ErrInvalidDataURI indicates a data URI without a comma or with a bad payload
	ErrInvalidDataURI = errors.New("invalid data URI")
	// ErrInvalidDimensions indicates a thumbnail size that is not positive
	ErrInvalidDimensions = errors.New("invalid dimensions: columns and rows must be positive")
	// ErrTooLarge indicates an image whose dimensions exceed MaxImageDimension
	ErrTooLarge = errors.New("image dimensions exceed maximum allowed")
)

// DataURI is a decoded RFC 2397 data URI.
type DataURI struct {
	MediaType string
	Data      []byte
}

// ParseDataURI decodes a data URI such as "data:image/png;base64,iVBOR...".
// A missing media type defaults to text/plain as the RFC specifies.
func ParseDataURI(uri string) (DataURI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return DataURI{}, ErrNotDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}

	isBase64 := false
	params := strings.Split(meta, ";")
	mediaType := strings.TrimSpace(params[0])
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return DataURI{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return DataURI{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		data = []byte(unescaped)
	}

	return DataURI{MediaType: strings.ToLower(mediaType), Data: data}, nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect reads the image header. Supported formats are png, jpeg, gif,
// bmp and tiff, the same set the analysis service accepts.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Thumbnail is what the results panel shows for one returned image.
type Thumbnail struct {
	Name string
	Size int
	Info Info
	Art  string
	Err  error
}

// Preview builds a thumbnail for a returned image. It never fails: a broken
// data URI or an undecodable image is recorded in Err and Art stays empty,
// so one bad image does not hide the answer.
func Preview(name, dataURI string, cols, maxRows int) Thumbnail {
	t := Thumbnail{Name: name}

	uri, err := ParseDataURI(dataURI)
	if err != nil {
		t.Err = err
		return t
	}
	t.Size = len(uri.Data)

	info, err := Inspect(uri.Data)
	if err != nil {
		t.Err = err
		return t
	}
	t.Info = info
	if info.Width > MaxImageDimension || info.Height > MaxImageDimension {
		t.Err = fmt.Errorf("%w: %dx%d", ErrTooLarge, info.Width, info.Height)
		return t
	}

	img, _, err := image.Decode(bytes.NewReader(uri.Data))
	if err != nil {
		t.Err = err
		return t
	}

	art, err := RenderBlocks(img, cols, maxRows)
	if err != nil {
		t.Err = err
		return t
	}
	t.Art = art
	return t
}

// RenderBlocks draws img as rows of half-block cells, two pixel rows per
// text row, at most cols wide and maxRows tall. Aspect ratio is preserved.
func RenderBlocks(img image.Image, cols, maxRows int) (string, error) {
	if cols <= 0 || maxRows <= 0 {
		return "", ErrInvalidDimensions
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return "", ErrInvalidDimensions
	}

	// Each cell is roughly twice as tall as wide, and holds two pixel rows.
	rows := (cols*h + w) / (2 * w)
	if rows < 1 {
		rows = 1
	}
	if rows > maxRows {
		rows = maxRows
		cols = (rows*2*w + h/2) / h
		if cols < 1 {
			cols = 1
		}
	}

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		topY := b.Min.Y + (2*y)*h/(2*rows)
		bottomY := b.Min.Y + (2*y+1)*h/(2*rows)
		for x := 0; x < cols; x++ {
			px := b.Min.X + x*w/cols
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(img.At(px, topY)))).
				Background(lipgloss.Color(hexColor(img.At(px, bottomY))))
			sb.WriteString(style.Render(upperHalfBlock))
		}
	}
	return sb.String(), nil
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// HumanSize formats a byte count for labels ("512 B", "12.3 KB", "4.0 MB").
func HumanSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
