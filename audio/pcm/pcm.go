// Package pcm handles the 16-bit mono LINEAR16 audio returned by the speech
// synthesiser.
package pcm

import (
	"encoding/binary"
	"sync"
)

// SampleBytes is the size of one int16 sample.
const SampleBytes = 2

type ByteOrder = binary.ByteOrder

var (
	LittleEndian ByteOrder = binary.LittleEndian
	BigEndian    ByteOrder = binary.BigEndian
)

// FrameSize returns the number of samples in a frame of ms milliseconds.
func FrameSize(sampleRate, ms int) int {
	return sampleRate * ms / 1000
}

func BytesToSamples(bytes int) int {
	return bytes / SampleBytes
}

func SamplesToBytes(samples int) int {
	return samples * SampleBytes
}

// Decode decodes as many whole samples of p as fit into dst and returns the
// number of samples written.
func Decode(dst []int16, p []byte, order ByteOrder) int {
	n := min(len(dst), BytesToSamples(len(p)))
	for i := range dst[:n] {
		dst[i] = int16(order.Uint16(p[SampleBytes*i:]))
	}
	return n
}

// SplitFrames decodes p into frame one frame at a time and calls f with it.
// The last frame is padded with silence. It stops at the first error of f.
func SplitFrames(p []byte, frame []int16, order ByteOrder, f func(frame []int16) error) error {
	step := SamplesToBytes(len(frame))
	if step == 0 {
		return nil
	}

	for i := 0; i < len(p); i += step {
		tail := min(len(p), i+step)
		n := Decode(frame, p[i:tail], order)
		if n < len(frame) {
			clear(frame[n:])
		}

		err := f(frame)
		if err != nil {
			return err
		}
	}

	return nil
}

type Frame []int16

// FramePool reuses frames of a fixed number of samples.
type FramePool struct {
	pool sync.Pool
}

func NewFramePool(size int) *FramePool {
	return &FramePool{
		pool: sync.Pool{
			New: func() any {
				f := make(Frame, size)
				return &f
			},
		},
	}
}

func (pool *FramePool) Get() *Frame {
	return pool.pool.Get().(*Frame)
}

func (pool *FramePool) Put(f *Frame) {
	pool.pool.Put(f)
}
