// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gputest

import (
	"image"
	"sync"

	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Write is one recorded WriteBuffer call.
type Write struct {
	Buffer hal.Buffer
	Offset uint64
	Size   int
}

// Queue wraps a noop queue and logs writes, submissions and presents.
type Queue struct {
	*noop.Queue

	mu            sync.Mutex
	Writes        []Write
	TextureWrites []hal.ImageCopyTexture
	Submits       int
	Presents      int
}

// WriteBuffer records the call and copies into the noop buffer.
func (q *Queue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	q.mu.Lock()
	q.Writes = append(q.Writes, Write{Buffer: buf, Offset: offset, Size: len(data)})
	q.mu.Unlock()
	return q.Queue.WriteBuffer(buf, offset, data)
}

// WriteTexture records the destination.
func (q *Queue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.mu.Lock()
	q.TextureWrites = append(q.TextureWrites, *dst)
	q.mu.Unlock()
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// Submit counts submissions.
func (q *Queue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.mu.Lock()
	q.Submits++
	q.mu.Unlock()
	return q.Queue.Submit(cmds)
}

// Present counts presents.
func (q *Queue) Present(s hal.Surface, t hal.SurfaceTexture, damage []image.Rectangle) error {
	q.mu.Lock()
	q.Presents++
	q.mu.Unlock()
	return q.Queue.Present(s, t, damage)
}

// WritesTo returns the writes that targeted buf.
func (q *Queue) WritesTo(buf hal.Buffer) []Write {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Write
	for _, w := range q.Writes {
		if w.Buffer == buf {
			out = append(out, w)
		}
	}
	return out
}

// Reset clears the write log.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.Writes = nil
	q.TextureWrites = nil
	q.mu.Unlock()
}
