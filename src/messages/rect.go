package messages

import "image"

// Rectangle is a screen region in virtual-screen pixel coordinates.
type Rectangle struct {
	Left   int
	Top    int
	Width  int
	Height int
}

func (r Rectangle) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}
