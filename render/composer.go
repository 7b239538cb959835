// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/gfx"
)

// ComposerStats counts composed frames and bundles dropped because their
// clip section was off screen.
type ComposerStats struct {
	Frames  int
	Skipped int
	Lost    int
	Clipped int
}

type inFlight struct {
	index uint64
	cmd   hal.CommandBuffer
}

// Composer encodes the ordered bundles into one render pass per frame and
// presents the result.
type Composer struct {
	ctx      *gfx.Context
	inFlight []inFlight
	stats    ComposerStats
}

// NewComposer creates a composer drawing to ctx's surface.
func NewComposer(ctx *gfx.Context) *Composer {
	return &Composer{ctx: ctx}
}

// Compose draws the instructions into the next surface texture. A clipped
// bundle is drawn with its clip section as the scissor rectangle and
// dropped when that section is off screen. With no instructions the frame
// is skipped without acquiring a texture. A lost surface is
// reconfigured and the frame skipped; the instance tables are untouched, so
// the next frame draws everything again.
func (c *Composer) Compose(instructions []Instruction) error {
	c.reclaim()
	if len(instructions) == 0 {
		c.stats.Skipped++
		return nil
	}

	frame, err := c.ctx.SurfaceTexture()
	if err != nil {
		if errors.Is(err, gfx.ErrSurfaceLost) {
			return c.recover()
		}
		return fmt.Errorf("render: %w", err)
	}

	if err := c.encode(frame, instructions); err != nil {
		c.ctx.Discard(frame)
		slogger().Error("render: frame aborted", "err", err)
		return err
	}
	if err := c.ctx.Present(frame); err != nil {
		if errors.Is(err, gfx.ErrSurfaceLost) {
			return c.recover()
		}
		return fmt.Errorf("render: %w", err)
	}
	c.stats.Frames++
	return nil
}

func (c *Composer) encode(frame *gfx.Frame, instructions []Instruction) error {
	device := c.ctx.Device()
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "foliage_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("render: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("foliage_frame"); err != nil {
		return fmt.Errorf("render: begin encoding: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:                  "foliage_frame_pass",
		ColorAttachments:       []hal.RenderPassColorAttachment{c.ctx.ColorAttachment(frame.View)},
		DepthStencilAttachment: c.ctx.DepthStencilAttachment(),
	})
	full := c.ctx.SurfaceRect()
	current := full
	for _, in := range instructions {
		rect := full
		if in.Clip.Clipped() {
			r, ok := c.ctx.Scissor(gfx.Section(in.Clip))
			if !ok {
				c.stats.Clipped++
				continue
			}
			rect = r
		}
		if rect != current {
			pass.SetScissorRect(rect.X, rect.Y, rect.W, rect.H)
			current = rect
		}
		pass.ExecuteBundle(in.Bundle)
	}
	pass.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("render: end encoding: %w", err)
	}
	index, err := c.ctx.Queue().Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		device.FreeCommandBuffer(cmd)
		return fmt.Errorf("render: submit: %w", err)
	}
	c.inFlight = append(c.inFlight, inFlight{index: index, cmd: cmd})
	return nil
}

func (c *Composer) recover() error {
	c.stats.Lost++
	if err := c.ctx.Reconfigure(); err != nil {
		return fmt.Errorf("render: reconfigure after surface loss: %w", err)
	}
	return nil
}

// reclaim frees command buffers whose submission has completed.
func (c *Composer) reclaim() {
	if len(c.inFlight) == 0 {
		return
	}
	done := c.ctx.Queue().PollCompleted()
	keep := c.inFlight[:0]
	for _, f := range c.inFlight {
		if f.index <= done {
			c.ctx.Device().FreeCommandBuffer(f.cmd)
			continue
		}
		keep = append(keep, f)
	}
	c.inFlight = keep
}

// Stats returns the composer counters.
func (c *Composer) Stats() ComposerStats { return c.stats }

// Close frees every command buffer still held.
func (c *Composer) Close() {
	for _, f := range c.inFlight {
		c.ctx.Device().FreeCommandBuffer(f.cmd)
	}
	c.inFlight = nil
}
