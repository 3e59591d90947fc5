// Package webcam provides a capture.Device backed by an OpenCV video capture.
package webcam

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/leonardotrapani/captrans/internal/capture"
	"github.com/leonardotrapani/captrans/internal/frame"
)

var errEmptyFrame = errors.New("empty frame")

// Device reads BGR frames from a local camera or capture card.
type Device struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// Open satisfies capture.Opener.
func Open(cfg capture.Config) (capture.Device, error) {
	vc, err := gocv.VideoCaptureDevice(cfg.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("open video device %d: %w", cfg.DeviceIndex, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video device %d: not opened", cfg.DeviceIndex)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	return &Device{vc: vc, mat: gocv.NewMat()}, nil
}

func (d *Device) Read() (frame.Frame, error) {
	if ok := d.vc.Read(&d.mat); !ok {
		return frame.Frame{}, fmt.Errorf("read video device: %w", errEmptyFrame)
	}
	if d.mat.Empty() {
		return frame.Frame{}, errEmptyFrame
	}
	return FromMat(d.mat, time.Now())
}

func (d *Device) Close() error {
	d.mat.Close()
	return d.vc.Close()
}

// FromMat copies an 8-bit Mat into a Frame.
func FromMat(m gocv.Mat, ts time.Time) (frame.Frame, error) {
	switch m.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return frame.Frame{}, fmt.Errorf("unsupported mat type: %v", m.Type())
	}
	return frame.Frame{
		Width:     m.Cols(),
		Height:    m.Rows(),
		Channels:  m.Channels(),
		Pix:       m.ToBytes(),
		Timestamp: ts,
	}, nil
}

// ToMat copies a Frame into a new Mat. The caller must Close it.
func ToMat(f frame.Frame) (gocv.Mat, error) {
	if err := f.Validate(); err != nil {
		return gocv.Mat{}, err
	}
	var mt gocv.MatType
	switch f.Channels {
	case 1:
		mt = gocv.MatTypeCV8UC1
	case 3:
		mt = gocv.MatTypeCV8UC3
	default:
		mt = gocv.MatTypeCV8UC4
	}
	return gocv.NewMatFromBytes(f.Height, f.Width, mt, f.Pix)
}
