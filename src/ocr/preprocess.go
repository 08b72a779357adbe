package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const (
	borderWidth = 20
	scaleFactor = 2
)

// Preprocess prepares a capture for Tesseract: grayscale, Otsu binarization
// oriented as dark text on a white background, a white border and a 2x
// Catmull-Rom upscale.
func Preprocess(src image.Image) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray.Set(x, y, color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)))
		}
	}

	t := otsuThreshold(gray)
	dark := 0
	for i, v := range gray.Pix {
		if v > t {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
			dark++
		}
	}
	// The background is whichever class covers more pixels; make it white.
	if dark*2 > len(gray.Pix) {
		for i, v := range gray.Pix {
			gray.Pix[i] = 255 - v
		}
	}

	bordered := image.NewGray(image.Rect(0, 0, w+2*borderWidth, h+2*borderWidth))
	for i := range bordered.Pix {
		bordered.Pix[i] = 255
	}
	draw.Draw(bordered, image.Rect(borderWidth, borderWidth, borderWidth+w, borderWidth+h), gray, image.Point{}, draw.Src)

	bb := bordered.Bounds()
	out := image.NewGray(image.Rect(0, 0, bb.Dx()*scaleFactor, bb.Dy()*scaleFactor))
	draw.CatmullRom.Scale(out, out.Bounds(), bordered, bb, draw.Src, nil)
	return out
}

// otsuThreshold picks the gray level that maximizes between-class variance.
func otsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	for _, v := range img.Pix {
		hist[v]++
	}
	total := len(img.Pix)
	if total == 0 {
		return 127
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB float64
	var wB int
	var best float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}
