package renderer

import (
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// RendererBackend is the device-facing half of the renderer. The front-end
// composes meshes, the camera and the named texture registry on top of it;
// everything below this line touches native handles.
type RendererBackend interface {
	Initialize() error
	Shutdow() error
	Resized(width, height uint16) error

	BeginFrame(deltaTime float64) error
	EndFrame() error

	CreateVertexBuffer(data []float32) metadata.BufferHandle
	CreateIndexBuffer(data []uint32) metadata.BufferHandle
	CreateUniformBuffer(size uint64) metadata.BufferHandle
	UpdateUniformBuffer(handle metadata.BufferHandle, data []byte) error
	ReadBuffer(handle metadata.BufferHandle) ([]byte, error)
	DestroyBuffer(handle metadata.BufferHandle)
	HasBuffer(handle metadata.BufferHandle) bool

	CreateTexture(pixels []uint8, width, height, channels uint32) metadata.TextureHandle
	CreateTextureLinear(pixels []uint8, width, height, channels uint32) metadata.TextureHandle
	DestroyTexture(handle metadata.TextureHandle)
	BindTexture(handle metadata.TextureHandle)
	DefaultTexture() metadata.TextureHandle
	GetTextureInfo(handle metadata.TextureHandle) (metadata.TextureInfo, bool)

	CreatePipeline(config *metadata.PipelineConfig) metadata.PipelineHandle
	DestroyPipeline(handle metadata.PipelineHandle)
	BindPipeline(handle metadata.PipelineHandle)

	DrawMeshBuffers(vertex, index metadata.BufferHandle, indexCount uint32, model math.Mat4, color math.Vec4)
	DrawVertices(buffer metadata.BufferHandle, vertexCount uint32)
	DrawIndexed(vertex, index metadata.BufferHandle, indexCount uint32)

	SetViewMatrix(view math.Mat4)
	SetProjectionMatrix(projection math.Mat4)
	SetClearColor(r, g, b, a float32)

	Width() uint32
	Height() uint32
	AspectRatio() float32
	MaxTextureDimension() uint32
	FrameNumber() uint64
	Stats() metadata.BackendStats
}
