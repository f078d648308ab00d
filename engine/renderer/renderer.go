package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"

	"github.com/spaghettifunk/nucleo/engine/assets"
	"github.com/spaghettifunk/nucleo/engine/containers"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/platform"
	"github.com/spaghettifunk/nucleo/engine/renderer/components"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
	"github.com/spaghettifunk/nucleo/engine/renderer/vulkan"
)

// Renderer is the application-facing front of the rendering stack. It owns
// the device-free bookkeeping (meshes, the named texture registry, the
// camera) and forwards everything that touches the GPU to the backend.
// One instance per window; all calls belong to the render thread.
type Renderer struct {
	backend RendererBackend
	assets  *assets.AssetManager

	// Meshes are pure compositions of backend buffer handles, so the pool
	// lives up here rather than in the backend. Append-only: a destroyed
	// mesh slot is never recycled, which keeps stale handles inert.
	meshes *containers.Pool[metadata.MeshResource]

	// Named textures with reference counts, see textures.go.
	registry *swiss.Map[string, *metadata.TextureReference]

	camera *components.Camera
	// Set when the caller pushed a raw projection matrix; suppresses the
	// automatic aspect-ratio refresh after swapchain rebuilds.
	projectionOverridden bool
}

// New wires a renderer around the Vulkan backend. Initialize must be called
// before any other method.
func New(p *platform.Platform, assetManager *assets.AssetManager, config *metadata.RendererBackendConfig) *Renderer {
	return newRenderer(vulkan.New(p, assetManager, config), assetManager)
}

func newRenderer(backend RendererBackend, assetManager *assets.AssetManager) *Renderer {
	return &Renderer{
		backend:  backend,
		assets:   assetManager,
		meshes:   containers.NewPool[metadata.MeshResource](false),
		registry: swiss.NewMap[string, *metadata.TextureReference](32),
		camera:   components.NewCamera(),
	}
}

func (r *Renderer) Initialize() error {
	if err := r.backend.Initialize(); err != nil {
		return err
	}
	r.pushCamera()
	return nil
}

func (r *Renderer) Shutdown() error {
	// The backend is about to release every texture, so the name registry
	// would only hold dangling handles.
	r.registry = swiss.NewMap[string, *metadata.TextureReference](32)
	return r.backend.Shutdow()
}

// BeginFrame starts recording. A core.ErrSwapchainBooting return means the
// swapchain was (or is being) rebuilt: the caller skips this tick and tries
// again. The projection is refreshed on that path because the rebuild may
// have changed the aspect ratio.
func (r *Renderer) BeginFrame(deltaTime float64) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			r.pushCamera()
		}
		return err
	}
	return nil
}

func (r *Renderer) EndFrame() error {
	return r.backend.EndFrame()
}

// OnResized forwards the new framebuffer size. The actual swapchain rebuild
// happens inside the next BeginFrame.
func (r *Renderer) OnResized(width, height uint16) error {
	return r.backend.Resized(width, height)
}

// --- camera ---

// pushCamera sends the camera's matrices to the backend. A raw projection
// set through SetProjectionMatrix is left alone.
func (r *Renderer) pushCamera() {
	r.backend.SetViewMatrix(r.camera.View())
	if !r.projectionOverridden {
		r.backend.SetProjectionMatrix(r.camera.Projection(r.backend.AspectRatio()))
	}
}

func (r *Renderer) Camera() *components.Camera {
	return r.camera
}

// SetCamera moves the camera and pushes the resulting view matrix.
func (r *Renderer) SetCamera(position, target, up math.Vec3) {
	r.camera.LookAt(position, target, up)
	r.pushCamera()
}

// SetPerspective replaces the projection parameters; the aspect ratio
// always follows the current framebuffer.
func (r *Renderer) SetPerspective(fovDegrees, nearClip, farClip float32) {
	r.camera.SetPerspective(fovDegrees, nearClip, farClip)
	r.projectionOverridden = false
	r.pushCamera()
}

func (r *Renderer) GetViewMatrix() math.Mat4 {
	return r.camera.View()
}

func (r *Renderer) GetProjectionMatrix() math.Mat4 {
	return r.camera.Projection(r.backend.AspectRatio())
}

// SetViewMatrix bypasses the camera and hands the backend a raw view.
func (r *Renderer) SetViewMatrix(view math.Mat4) {
	r.backend.SetViewMatrix(view)
}

// SetProjectionMatrix bypasses the camera. The matrix is used verbatim
// until SetPerspective is called again, including across resizes.
func (r *Renderer) SetProjectionMatrix(projection math.Mat4) {
	r.projectionOverridden = true
	r.backend.SetProjectionMatrix(projection)
}

func (r *Renderer) SetClearColor(red, green, blue, alpha float32) {
	r.backend.SetClearColor(red, green, blue, alpha)
}

// --- meshes ---

// CreateMesh uploads the interleaved vertex and index payloads and tracks
// them as one resource. Creation is transactional: if the index buffer
// fails after the vertex buffer succeeded, the vertex buffer is destroyed
// before the invalid handle is returned.
func (r *Renderer) CreateMesh(data *metadata.MeshData) metadata.MeshHandle {
	if data == nil || len(data.Vertices) == 0 || len(data.Indices) == 0 {
		core.LogWarn("CreateMesh called with empty mesh data")
		return metadata.InvalidMesh
	}

	vertexBuffer := r.backend.CreateVertexBuffer(data.Vertices)
	if !vertexBuffer.IsValid() {
		return metadata.InvalidMesh
	}
	indexBuffer := r.backend.CreateIndexBuffer(data.Indices)
	if !indexBuffer.IsValid() {
		r.backend.DestroyBuffer(vertexBuffer)
		return metadata.InvalidMesh
	}

	indexCount := data.IndexCount
	if indexCount == 0 {
		indexCount = uint32(len(data.Indices))
	}
	id, generation := r.meshes.Add(metadata.MeshResource{
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		IndexCount:   indexCount,
		Format:       data.Format,
	})
	return metadata.NewMeshHandle(id, generation)
}

// DestroyMesh releases both underlying buffers. Stale handles are ignored.
func (r *Renderer) DestroyMesh(handle metadata.MeshHandle) {
	mesh, ok := r.meshes.Remove(handle.ID, handle.Generation)
	if !ok {
		core.LogDebug("DestroyMesh ignoring stale handle id=%d", handle.ID)
		return
	}
	r.backend.DestroyBuffer(mesh.VertexBuffer)
	r.backend.DestroyBuffer(mesh.IndexBuffer)
}

// GetMeshBuffers resolves a mesh handle to its buffer handles. ok is false
// when the mesh is gone or either buffer has been destroyed underneath it.
func (r *Renderer) GetMeshBuffers(handle metadata.MeshHandle) (vertex, index metadata.BufferHandle, indexCount uint32, ok bool) {
	mesh, found := r.meshes.Get(handle.ID, handle.Generation)
	if !found {
		return metadata.InvalidBuffer, metadata.InvalidBuffer, 0, false
	}
	if !r.backend.HasBuffer(mesh.VertexBuffer) || !r.backend.HasBuffer(mesh.IndexBuffer) {
		return metadata.InvalidBuffer, metadata.InvalidBuffer, 0, false
	}
	return mesh.VertexBuffer, mesh.IndexBuffer, mesh.IndexCount, true
}

// DrawMesh records an indexed draw of the mesh with the given per-draw
// uniforms. Invalid or partially destroyed meshes draw nothing.
func (r *Renderer) DrawMesh(handle metadata.MeshHandle, model math.Mat4, color math.Vec4) {
	vertex, index, indexCount, ok := r.GetMeshBuffers(handle)
	if !ok {
		core.LogDebug("DrawMesh skipping invalid mesh id=%d", handle.ID)
		return
	}
	r.backend.DrawMeshBuffers(vertex, index, indexCount, model, color)
}

// --- raw buffers ---

func (r *Renderer) CreateVertexBuffer(data []float32) metadata.BufferHandle {
	return r.backend.CreateVertexBuffer(data)
}

func (r *Renderer) CreateIndexBuffer(data []uint32) metadata.BufferHandle {
	return r.backend.CreateIndexBuffer(data)
}

func (r *Renderer) CreateUniformBuffer(size uint64) metadata.BufferHandle {
	return r.backend.CreateUniformBuffer(size)
}

func (r *Renderer) UpdateUniformBuffer(handle metadata.BufferHandle, data []byte) error {
	return r.backend.UpdateUniformBuffer(handle, data)
}

func (r *Renderer) ReadBuffer(handle metadata.BufferHandle) ([]byte, error) {
	return r.backend.ReadBuffer(handle)
}

func (r *Renderer) DestroyBuffer(handle metadata.BufferHandle) {
	r.backend.DestroyBuffer(handle)
}

func (r *Renderer) DrawVertices(buffer metadata.BufferHandle, vertexCount uint32) {
	r.backend.DrawVertices(buffer, vertexCount)
}

func (r *Renderer) DrawIndexed(vertex, index metadata.BufferHandle, indexCount uint32) {
	r.backend.DrawIndexed(vertex, index, indexCount)
}

// --- pipelines ---

func (r *Renderer) CreatePipeline(config *metadata.PipelineConfig) metadata.PipelineHandle {
	return r.backend.CreatePipeline(config)
}

func (r *Renderer) DestroyPipeline(handle metadata.PipelineHandle) {
	r.backend.DestroyPipeline(handle)
}

func (r *Renderer) BindPipeline(handle metadata.PipelineHandle) {
	r.backend.BindPipeline(handle)
}

// --- accessors ---

func (r *Renderer) Width() uint32 {
	return r.backend.Width()
}

func (r *Renderer) Height() uint32 {
	return r.backend.Height()
}

func (r *Renderer) AspectRatio() float32 {
	return r.backend.AspectRatio()
}

func (r *Renderer) FrameNumber() uint64 {
	return r.backend.FrameNumber()
}
