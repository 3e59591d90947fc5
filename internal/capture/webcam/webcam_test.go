package webcam

import (
	"testing"
	"time"

	"github.com/leonardotrapani/captrans/internal/frame"
)

func TestMatRoundTrip(t *testing.T) {
	f := frame.New(6, 4, 3)
	for i := range f.Pix {
		f.Pix[i] = byte(i)
	}

	m, err := ToMat(f)
	if err != nil {
		t.Fatalf("ToMat() error = %v", err)
	}
	defer m.Close()

	if m.Cols() != 6 || m.Rows() != 4 || m.Channels() != 3 {
		t.Fatalf("mat = %dx%dx%d, want 6x4x3", m.Cols(), m.Rows(), m.Channels())
	}

	ts := time.Unix(42, 0)
	back, err := FromMat(m, ts)
	if err != nil {
		t.Fatalf("FromMat() error = %v", err)
	}
	if back.Width != 6 || back.Height != 4 || back.Channels != 3 || !back.Timestamp.Equal(ts) {
		t.Errorf("FromMat() = %dx%dx%d @%v", back.Width, back.Height, back.Channels, back.Timestamp)
	}
	for i := range f.Pix {
		if back.Pix[i] != f.Pix[i] {
			t.Fatalf("pixel %d = %d, want %d", i, back.Pix[i], f.Pix[i])
		}
	}
}

func TestToMat_Invalid(t *testing.T) {
	if _, err := ToMat(frame.Frame{Width: 2, Height: 2, Channels: 3}); err == nil {
		t.Error("ToMat() should reject a frame without pixels")
	}
}
