package pcm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFrameSize(t *testing.T) {
	if got := FrameSize(48000, 20); got != 960 {
		t.Errorf("FrameSize(48000, 20): got %d, want 960", got)
	}
}

func TestDecode(t *testing.T) {
	p := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0x7f}

	dst := make([]int16, 4)
	n := Decode(dst, p, LittleEndian)
	if n != 3 {
		t.Fatalf("Decode(): got %d samples, want 3", n)
	}
	if diff := cmp.Diff([]int16{1, -1, -32768, 0}, dst); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}

	n = Decode(dst[:1], []byte{0x01, 0x02}, BigEndian)
	if n != 1 || dst[0] != 0x0102 {
		t.Errorf("Decode(BigEndian): got %d, %#x", n, dst[0])
	}
}

func TestSplitFrames(t *testing.T) {
	// five samples, frames of two
	p := []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0}

	var frames [][]int16
	frame := make([]int16, 2)
	err := SplitFrames(p, frame, LittleEndian, func(f []int16) error {
		frames = append(frames, append([]int16(nil), f...))
		return nil
	})
	if err != nil {
		t.Fatalf("SplitFrames(): %v", err)
	}

	want := [][]int16{{1, 2}, {3, 4}, {5, 0}}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("SplitFrames() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitFramesError(t *testing.T) {
	p := make([]byte, 16)
	errStop := errors.New("stop")

	calls := 0
	err := SplitFrames(p, make([]int16, 2), LittleEndian, func(f []int16) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("SplitFrames(): got %v, want %v", err, errStop)
	}
	if calls != 1 {
		t.Errorf("SplitFrames(): f called %d times, want 1", calls)
	}
}

func TestSplitFramesEmptyFrame(t *testing.T) {
	err := SplitFrames([]byte{1, 2}, nil, LittleEndian, func(f []int16) error {
		t.Error("SplitFrames(): f called for empty frame")
		return nil
	})
	if err != nil {
		t.Errorf("SplitFrames(): %v", err)
	}
}

func TestFramePool(t *testing.T) {
	const size = 960
	pool := NewFramePool(size)

	f := pool.Get()
	if got := len(*f); got != size {
		t.Errorf("FramePool.Get(): frame size: got %v, want %v", got, size)
	}
	pool.Put(f)

	if got := len(*pool.Get()); got != size {
		t.Errorf("FramePool.Get(): frame size after Put: got %v, want %v", got, size)
	}
}
