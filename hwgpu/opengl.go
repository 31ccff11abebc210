// This file is part of scanline.
//
// scanline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// scanline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with scanline.  If not, see <https://www.gnu.org/licenses/>.

package hwgpu

import (
	"image"

	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/host"
)

// openglDevice assumes an OpenGL context is already current on the calling
// (GPU worker) thread — window/context creation is the host's job, per
// spec.md §1. It uploads each frame as a texture and blits it to the
// default framebuffer, the same "upload then blit" shape as the teacher's
// gl32_screenshot readback path, run in reverse.
type openglDevice struct {
	texture      uint32
	width        int32
	height       int32
	debugContext bool
}

func newOpenGLDevice(window host.WindowInfo, settings config.Settings) (*openglDevice, error) {
	d := &openglDevice{debugContext: settings.GPUUseDebugDevice}
	if err := gl.Init(); err != nil {
		return nil, gpuerrors.Wrap(gpuerrors.DeviceCreateFailed, err, "OpenGL", err.Error())
	}
	gl.GenTextures(1, &d.texture)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return d, nil
}

func (d *openglDevice) RenderAPI() host.RenderAPI { return host.RenderAPIOpenGL }

// Present uploads frame as a texture and blits it full-screen. OpenGL has
// no first-class device-lost notification the way WebGPU or D3D do, so this
// device only ever reports Success (or Skipped for a nil frame) — never
// DeviceLost or ExclusiveFullscreenLost — a documented limitation (see
// DESIGN.md).
func (d *openglDevice) Present(frame *image.RGBA, allowSkip bool) gpubackend.PresentResult {
	if frame == nil {
		return gpubackend.PresentSkipped
	}
	b := frame.Bounds()
	if int32(b.Dx()) != d.width || int32(b.Dy()) != d.height {
		d.width, d.height = int32(b.Dx()), int32(b.Dy())
		gl.BindTexture(gl.TEXTURE_2D, d.texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, d.width, d.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
	} else {
		gl.BindTexture(gl.TEXTURE_2D, d.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, d.width, d.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
	}

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Enable(gl.TEXTURE_2D)
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()

	return gpubackend.PresentSuccess
}

func (d *openglDevice) Destroy() {
	if d.texture != 0 {
		gl.DeleteTextures(1, &d.texture)
		d.texture = 0
	}
}
