// Package frame defines the pixel buffers that flow from the capture device
// to the recognizer, and the region-of-interest geometry applied to them.
package frame

import (
	"fmt"
	"time"
)

// Frame is an interleaved 8-bit pixel buffer in BGR order (or single-channel
// gray when Channels is 1). A Frame is never mutated after it is produced;
// consumers receive their own copy via Clone.
type Frame struct {
	Width     int
	Height    int
	Channels  int
	Pix       []byte
	Timestamp time.Time
}

// New allocates a zeroed frame.
func New(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// Stride is the number of bytes in one row.
func (f Frame) Stride() int {
	return f.Width * f.Channels
}

func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size: %dx%d", f.Width, f.Height)
	}
	if f.Channels != 1 && f.Channels != 3 && f.Channels != 4 {
		return fmt.Errorf("invalid frame channels: %d", f.Channels)
	}
	if want := f.Width * f.Height * f.Channels; len(f.Pix) != want {
		return fmt.Errorf("invalid frame buffer: got %d bytes, want %d", len(f.Pix), want)
	}
	return nil
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := f
	if f.Pix != nil {
		out.Pix = make([]byte, len(f.Pix))
		copy(out.Pix, f.Pix)
	}
	return out
}

// Crop copies the pixels inside r into a new frame. r must already be
// clamped to the frame bounds.
func (f Frame) Crop(r Rect) (Frame, error) {
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 ||
		r.X+r.Width > f.Width || r.Y+r.Height > f.Height {
		return Frame{}, fmt.Errorf("crop %s outside frame %dx%d", r, f.Width, f.Height)
	}

	out := New(r.Width, r.Height, f.Channels)
	out.Timestamp = f.Timestamp

	srcStride := f.Stride()
	dstStride := out.Stride()
	for row := 0; row < r.Height; row++ {
		src := (r.Y+row)*srcStride + r.X*f.Channels
		copy(out.Pix[row*dstStride:(row+1)*dstStride], f.Pix[src:src+dstStride])
	}
	return out, nil
}
