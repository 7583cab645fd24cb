package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Processor handles image loading and saving around the pipeline
type Processor struct {
	client *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// GetImageInfo returns basic information about an image
func (p *Processor) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	info := ImageInfo{Width: bounds.Dx(), Height: bounds.Dy()}
	if info.Height > 0 {
		info.AspectRatio = float64(info.Width) / float64(info.Height)
	}
	return info
}

// ValidateImage rejects empty images
func (p *Processor) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", types.ErrInvalidImage, bounds.Dx(), bounds.Dy())
	}
	return nil
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Aspect-Outpaint/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return p.decodeImageFromBytes(imageData)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := p.decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("image: unknown format for %s", path)
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// SaveResult writes every batch item of canvas and the mask. A single-item
// batch is written to canvasPath; larger batches get "_<index>" before the
// extension. The mask is always written losslessly.
func (p *Processor) SaveResult(canvas *tensor.Image, mask *tensor.Mask, canvasPath, maskPath, format string, quality int, lossless bool) error {
	for b := 0; b < canvas.Batch; b++ {
		if err := p.SaveImage(canvas.ToImage(b), BatchPath(canvasPath, b, canvas.Batch), format, quality, lossless); err != nil {
			return fmt.Errorf("failed to save canvas %d: %w", b, err)
		}
	}
	maskFormat := "png"
	if strings.EqualFold(format, "webp") {
		maskFormat = "webp"
	}
	if err := p.SaveImage(mask.ToGray(), maskPath, maskFormat, 100, true); err != nil {
		return fmt.Errorf("failed to save mask: %w", err)
	}
	return nil
}

// BatchPath returns the path for item b of an n-item batch
func BatchPath(path string, b, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), b, ext)
}

// CreateDebugOverlay outlines the foreground rectangle on the canvas and tints
// the mask over it, so the feather band is visible.
func (p *Processor) CreateDebugOverlay(canvas image.Image, mask *tensor.Mask, off types.PadOffsets) image.Image {
	nrgba := imaging.Clone(canvas)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	red := color.NRGBA{255, 0, 0, 255}
	gold := color.NRGBA{255, 204, 0, 255}
	stroke := int(math.Max(2, 0.004*float64(min(w, h))))

	for y := 0; y < h && y < mask.Height; y++ {
		i := y * nrgba.Stride
		for x := 0; x < w && x < mask.Width; x++ {
			a := float64(mask.At(y, x)) * 0.5
			nrgba.Pix[i+0] = uint8(float64(nrgba.Pix[i+0])*(1-a) + float64(red.R)*a)
			nrgba.Pix[i+1] = uint8(float64(nrgba.Pix[i+1]) * (1 - a))
			nrgba.Pix[i+2] = uint8(float64(nrgba.Pix[i+2]) * (1 - a))
			i += 4
		}
	}

	x0, y0 := off.Left, off.Top
	x1, y1 := w-off.Right, h-off.Bottom
	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, y0+s, x0, x1, gold)
		drawHLine(nrgba, y1-1-s, x0, x1, gold)
		drawVLine(nrgba, x0+s, y0, y1, gold)
		drawVLine(nrgba, x1-1-s, y0, y1, gold)
	}
	return nrgba
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(x0, 0)
	x1 = min(x1, img.Bounds().Dx())
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0 = max(y0, 0)
	y1 = min(y1, img.Bounds().Dy())
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
