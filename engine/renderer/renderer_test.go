package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// fakeBackend is pure bookkeeping, so front-end logic runs without a
// device. Creation hands out sequential handles; failXxx flags make the
// next creation fail.
type fakeBackend struct {
	nextBuffer  uint32
	liveBuffers map[metadata.BufferHandle]bool
	failVertex  bool
	failIndex   bool

	destroyedBuffers []metadata.BufferHandle

	nextTexture       uint32
	liveTextures      map[metadata.TextureHandle]bool
	destroyedTextures []metadata.TextureHandle
	defaultTexture    metadata.TextureHandle
	boundTexture      metadata.TextureHandle

	nextPipeline  uint32
	livePipelines map[metadata.PipelineHandle]bool
	boundPipeline metadata.PipelineHandle

	meshDraws      int
	lastIndexCount uint32
	lastColor      math.Vec4

	view           math.Mat4
	projection     math.Mat4
	projectionSets int

	beginErr     error
	frameStarted bool
	frameNumber  uint64

	width, height uint32
}

var _ RendererBackend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{
		liveBuffers:   make(map[metadata.BufferHandle]bool),
		liveTextures:  make(map[metadata.TextureHandle]bool),
		livePipelines: make(map[metadata.PipelineHandle]bool),
		width:         1280,
		height:        720,
	}
	fb.defaultTexture = metadata.NewTextureHandle(0, 0)
	fb.liveTextures[fb.defaultTexture] = true
	fb.nextTexture = 1
	fb.boundTexture = fb.defaultTexture
	return fb
}

func (fb *fakeBackend) Initialize() error { return nil }
func (fb *fakeBackend) Shutdow() error    { return nil }

func (fb *fakeBackend) Resized(width, height uint16) error {
	fb.width, fb.height = uint32(width), uint32(height)
	return nil
}

func (fb *fakeBackend) BeginFrame(deltaTime float64) error {
	if fb.beginErr != nil {
		return fb.beginErr
	}
	fb.frameStarted = true
	return nil
}

func (fb *fakeBackend) EndFrame() error {
	fb.frameStarted = false
	fb.frameNumber++
	return nil
}

func (fb *fakeBackend) newBuffer() metadata.BufferHandle {
	handle := metadata.NewBufferHandle(fb.nextBuffer, 0)
	fb.nextBuffer++
	fb.liveBuffers[handle] = true
	return handle
}

func (fb *fakeBackend) CreateVertexBuffer(data []float32) metadata.BufferHandle {
	if fb.failVertex || len(data) == 0 {
		return metadata.InvalidBuffer
	}
	return fb.newBuffer()
}

func (fb *fakeBackend) CreateIndexBuffer(data []uint32) metadata.BufferHandle {
	if fb.failIndex || len(data) == 0 {
		return metadata.InvalidBuffer
	}
	return fb.newBuffer()
}

func (fb *fakeBackend) CreateUniformBuffer(size uint64) metadata.BufferHandle {
	if size == 0 {
		return metadata.InvalidBuffer
	}
	return fb.newBuffer()
}

func (fb *fakeBackend) UpdateUniformBuffer(handle metadata.BufferHandle, data []byte) error {
	if !fb.liveBuffers[handle] {
		return core.ErrNotInitialized
	}
	return nil
}

func (fb *fakeBackend) ReadBuffer(handle metadata.BufferHandle) ([]byte, error) {
	if !fb.liveBuffers[handle] {
		return nil, core.ErrNotInitialized
	}
	return []byte{}, nil
}

func (fb *fakeBackend) DestroyBuffer(handle metadata.BufferHandle) {
	delete(fb.liveBuffers, handle)
	fb.destroyedBuffers = append(fb.destroyedBuffers, handle)
}

func (fb *fakeBackend) HasBuffer(handle metadata.BufferHandle) bool {
	return fb.liveBuffers[handle]
}

func (fb *fakeBackend) CreateTexture(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	if len(pixels) == 0 {
		return metadata.InvalidTexture
	}
	handle := metadata.NewTextureHandle(fb.nextTexture, 0)
	fb.nextTexture++
	fb.liveTextures[handle] = true
	return handle
}

func (fb *fakeBackend) CreateTextureLinear(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	return fb.CreateTexture(pixels, width, height, channels)
}

func (fb *fakeBackend) DestroyTexture(handle metadata.TextureHandle) {
	delete(fb.liveTextures, handle)
	fb.destroyedTextures = append(fb.destroyedTextures, handle)
}

func (fb *fakeBackend) BindTexture(handle metadata.TextureHandle) {
	fb.boundTexture = handle
}

func (fb *fakeBackend) DefaultTexture() metadata.TextureHandle {
	return fb.defaultTexture
}

func (fb *fakeBackend) GetTextureInfo(handle metadata.TextureHandle) (metadata.TextureInfo, bool) {
	if !fb.liveTextures[handle] {
		return metadata.TextureInfo{}, false
	}
	return metadata.TextureInfo{Width: 1, Height: 1, Generation: handle.Generation}, true
}

func (fb *fakeBackend) CreatePipeline(config *metadata.PipelineConfig) metadata.PipelineHandle {
	if config == nil {
		return metadata.InvalidPipeline
	}
	handle := metadata.NewPipelineHandle(fb.nextPipeline, 0)
	fb.nextPipeline++
	fb.livePipelines[handle] = true
	return handle
}

func (fb *fakeBackend) DestroyPipeline(handle metadata.PipelineHandle) {
	delete(fb.livePipelines, handle)
}

func (fb *fakeBackend) BindPipeline(handle metadata.PipelineHandle) {
	fb.boundPipeline = handle
}

func (fb *fakeBackend) DrawMeshBuffers(vertex, index metadata.BufferHandle, indexCount uint32, model math.Mat4, color math.Vec4) {
	fb.meshDraws++
	fb.lastIndexCount = indexCount
	fb.lastColor = color
}

func (fb *fakeBackend) DrawVertices(buffer metadata.BufferHandle, vertexCount uint32) {}

func (fb *fakeBackend) DrawIndexed(vertex, index metadata.BufferHandle, indexCount uint32) {}

func (fb *fakeBackend) SetViewMatrix(view math.Mat4) { fb.view = view }

func (fb *fakeBackend) SetProjectionMatrix(projection math.Mat4) {
	fb.projection = projection
	fb.projectionSets++
}

func (fb *fakeBackend) SetClearColor(r, g, b, a float32) {}

func (fb *fakeBackend) Width() uint32  { return fb.width }
func (fb *fakeBackend) Height() uint32 { return fb.height }

func (fb *fakeBackend) AspectRatio() float32 {
	if fb.height == 0 {
		return 1.0
	}
	return float32(fb.width) / float32(fb.height)
}

func (fb *fakeBackend) MaxTextureDimension() uint32 { return 4096 }

func (fb *fakeBackend) FrameNumber() uint64 { return fb.frameNumber }

func (fb *fakeBackend) Stats() metadata.BackendStats {
	return metadata.BackendStats{
		FrameNumber:    fb.frameNumber,
		BuffersLive:    len(fb.liveBuffers),
		BuffersTotal:   int(fb.nextBuffer),
		TexturesLive:   len(fb.liveTextures),
		TexturesTotal:  int(fb.nextTexture),
		PipelinesLive:  len(fb.livePipelines),
		PipelinesTotal: int(fb.nextPipeline),
	}
}

func newTestRenderer(t *testing.T) (*Renderer, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	r := newRenderer(fb, nil)
	require.NoError(t, r.Initialize())
	return r, fb
}

func cubeData() *metadata.MeshData {
	return NewCubeData(1.0, math.NewVec3One())
}

func TestCreateMeshAndDraw(t *testing.T) {
	r, fb := newTestRenderer(t)

	mesh := r.CreateMesh(cubeData())
	require.True(t, mesh.IsValid())

	vertex, index, indexCount, ok := r.GetMeshBuffers(mesh)
	require.True(t, ok)
	require.True(t, vertex.IsValid())
	require.True(t, index.IsValid())
	require.Equal(t, uint32(36), indexCount)

	r.DrawMesh(mesh, math.NewMat4Identity(), math.NewVec4One())
	require.Equal(t, 1, fb.meshDraws)
	require.Equal(t, uint32(36), fb.lastIndexCount)
}

func TestCreateMeshRollsBackVertexBufferOnIndexFailure(t *testing.T) {
	r, fb := newTestRenderer(t)
	fb.failIndex = true

	mesh := r.CreateMesh(cubeData())
	require.False(t, mesh.IsValid())

	// The vertex buffer that succeeded must not leak.
	require.Len(t, fb.destroyedBuffers, 1)
	require.Empty(t, fb.liveBuffers)
}

func TestCreateMeshEmptyData(t *testing.T) {
	r, fb := newTestRenderer(t)

	require.False(t, r.CreateMesh(nil).IsValid())
	require.False(t, r.CreateMesh(&metadata.MeshData{}).IsValid())
	require.Empty(t, fb.liveBuffers)
}

func TestDrawMeshAfterDestroyIsNoop(t *testing.T) {
	r, fb := newTestRenderer(t)

	mesh := r.CreateMesh(cubeData())
	require.True(t, mesh.IsValid())
	r.DestroyMesh(mesh)
	require.Empty(t, fb.liveBuffers)

	r.DrawMesh(mesh, math.NewMat4Identity(), math.NewVec4One())
	require.Equal(t, 0, fb.meshDraws)

	_, _, _, ok := r.GetMeshBuffers(mesh)
	require.False(t, ok)
}

func TestDrawMeshWithBufferDestroyedUnderneath(t *testing.T) {
	r, fb := newTestRenderer(t)

	mesh := r.CreateMesh(cubeData())
	vertex, _, _, ok := r.GetMeshBuffers(mesh)
	require.True(t, ok)

	// Destroy one buffer behind the mesh's back.
	r.DestroyBuffer(vertex)

	_, _, _, ok = r.GetMeshBuffers(mesh)
	require.False(t, ok)
	r.DrawMesh(mesh, math.NewMat4Identity(), math.NewVec4One())
	require.Equal(t, 0, fb.meshDraws)
}

func TestStaleMeshHandleDoesNotAliasNewMesh(t *testing.T) {
	r, _ := newTestRenderer(t)

	first := r.CreateMesh(cubeData())
	r.DestroyMesh(first)
	second := r.CreateMesh(cubeData())
	require.True(t, second.IsValid())
	require.NotEqual(t, first, second)

	// The stale handle must not resolve to the replacement.
	_, _, _, ok := r.GetMeshBuffers(first)
	require.False(t, ok)
}

func TestDestroyMeshTwice(t *testing.T) {
	r, fb := newTestRenderer(t)

	mesh := r.CreateMesh(cubeData())
	r.DestroyMesh(mesh)
	destroyed := len(fb.destroyedBuffers)

	// Second destroy is ignored, no double-free of the buffers.
	r.DestroyMesh(mesh)
	require.Len(t, fb.destroyedBuffers, destroyed)
}

func TestCameraDefaultsPushedOnInitialize(t *testing.T) {
	r, fb := newTestRenderer(t)

	wantView := math.NewMat4LookAt(math.NewVec3(0, 2, 5), math.NewVec3Zero(), math.NewVec3Up())
	require.Equal(t, wantView, fb.view)

	// Vulkan clip space: the projection's Y scale is negated.
	require.Less(t, fb.projection.Data[5], float32(0))

	wantProjection := r.Camera().Projection(fb.AspectRatio())
	require.Equal(t, wantProjection, fb.projection)
}

func TestSetCameraPushesView(t *testing.T) {
	r, fb := newTestRenderer(t)

	position := math.NewVec3(3, 4, 5)
	target := math.NewVec3(0, 1, 0)
	r.SetCamera(position, target, math.NewVec3Up())

	require.Equal(t, math.NewMat4LookAt(position, target, math.NewVec3Up()), fb.view)
	require.Equal(t, position, r.Camera().Position())
}

func TestProjectionOverrideSurvivesSwapchainRebuild(t *testing.T) {
	r, fb := newTestRenderer(t)

	custom := math.NewMat4Identity()
	r.SetProjectionMatrix(custom)
	require.Equal(t, custom, fb.projection)

	// A rebuild-tick refreshes the camera, but a raw projection stays.
	fb.beginErr = core.ErrSwapchainBooting
	err := r.BeginFrame(0.016)
	require.ErrorIs(t, err, core.ErrSwapchainBooting)
	require.Equal(t, custom, fb.projection)

	// SetPerspective hands control back to the camera.
	fb.beginErr = nil
	r.SetPerspective(45.0, 0.1, 100.0)
	require.NotEqual(t, custom, fb.projection)
	require.Less(t, fb.projection.Data[5], float32(0))
}

func TestProjectionRefreshedOnSwapchainRebuild(t *testing.T) {
	r, fb := newTestRenderer(t)

	before := fb.projection

	// Simulate a resize followed by the rebuild tick.
	require.NoError(t, r.OnResized(800, 800))
	fb.beginErr = core.ErrSwapchainBooting
	require.ErrorIs(t, r.BeginFrame(0.016), core.ErrSwapchainBooting)

	require.NotEqual(t, before, fb.projection)
	require.Equal(t, r.Camera().Projection(1.0), fb.projection)
}
