package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxTextureSize 上传到 GPU 前的最长边
const DefaultMaxTextureSize = 2048

// Decode 解码图片并把最长边限制在 maxSize 内；maxSize <= 0 表示不缩放
func Decode(data []byte, maxSize int) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("解码图片失败: %w", err)
	}
	return Fit(img, maxSize), format, nil
}

// Fit 等比缩小到最长边不超过 maxSize；已经足够小时原样返回
func Fit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxSize
		dh = max(1, h*maxSize/w)
	} else {
		dh = maxSize
		dw = max(1, w*maxSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
