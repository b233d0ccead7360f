package mysite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, shrinks it to maxImageWidth if
// wider, and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}
	return Image{
		Filename:     name + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func slugifyFilename(name string) string {
	return Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StaticDir, uploadsSubdir)
}

// uniqueFilename appends a counter until the name is free both on disk and
// in the images table.
func (a *App) uniqueFilename(name string) (string, error) {
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for counter := 2; ; counter++ {
		onDisk, err := afero.Exists(a.fs, filepath.Join(a.uploadsDir(), candidate))
		if err != nil {
			return "", err
		}
		recorded, err := a.Store.ImageExists(candidate)
		if err != nil {
			return "", err
		}
		if !onDisk && !recorded {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(io.LimitReader(src, maxUploadSize), file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	if img.Filename, err = a.uniqueFilename(img.Filename); err != nil {
		return err
	}

	if err := a.fs.MkdirAll(a.uploadsDir(), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := afero.WriteFile(a.fs, filepath.Join(a.uploadsDir(), img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(img); err != nil {
		return err
	}
	a.Logger.Info("image uploaded", "file", img.Filename, "width", img.Width, "height", img.Height)
	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := path.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	// A file already gone from disk still has its row removed.
	if err := a.fs.Remove(filepath.Join(a.uploadsDir(), filename)); err != nil {
		a.Logger.Warn("remove image file", "file", filename, "error", err)
	}
	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}
