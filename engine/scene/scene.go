package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/entity"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrStaleResponse is returned by CompleteLoad for a response a newer BeginLoad superseded.
var ErrStaleResponse = errors.New("stale load response")

// State is the load lifecycle of a Scene.
type State int

const (
	// StateUnloaded means no model has been requested or the model was cleared.
	StateUnloaded State = iota
	// StateLoading means a request is in flight. A previous model, if any, keeps rendering.
	StateLoading
	// StateLoaded means the most recent request was installed.
	StateLoaded
	// StateLoadFailed means the most recent request failed. A previous model, if any, keeps rendering.
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// draw is one entity's draw work, resolved when a model is installed.
type draw struct {
	entity     int
	offset     uint32
	primitives []*mesh.Primitive
	materials  []material.Material
}

// Scene owns at most one Model plus the Camera it is viewed through, and issues the draw calls
// for them. A Scene is driven from the render goroutine; every method that touches the GPU
// must be called there.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Model returns the installed model, or nil.
	Model() model.Model

	// State returns the load lifecycle state.
	State() State

	// Generation returns the generation of the most recent BeginLoad.
	Generation() uint64

	// LastError returns the error of the most recent failed load, or nil.
	LastError() error

	// Wireframe reports whether models are built with line-list index buffers.
	Wireframe() bool

	// DrawCount returns the number of entities drawn per frame.
	DrawCount() int

	// BeginLoad records a new request generation and moves to StateLoading.
	//
	// Parameters:
	//   - generation: the generation returned by the loader
	BeginLoad(generation uint64)

	// CompleteLoad builds and installs the model of a load response. A response whose
	// generation is not the latest is discarded with ErrStaleResponse. On failure the previous
	// model keeps rendering and the scene moves to StateLoadFailed.
	//
	// Parameters:
	//   - resp: the loader response
	//
	// Returns:
	//   - error: ErrStaleResponse, the decode error, or the build error
	CompleteLoad(resp loader.Response) error

	// SetModel installs m and releases the previous model. A nil m behaves like ClearModel.
	//
	// Parameters:
	//   - m: the model to install
	//
	// Returns:
	//   - error: a graph error, in which case m is released and the previous model kept
	SetModel(m model.Model) error

	// ClearModel releases the installed model and moves to StateUnloaded.
	ClearModel()

	// Resize forwards a new viewport size to the camera and re-syncs its uniform.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// Rotate forwards an orbit delta to the camera and re-syncs its uniform.
	//
	// Parameters:
	//   - dx, dy: the rotate input
	Rotate(dx, dy float32)

	// Zoom forwards a zoom delta to the camera and re-syncs its uniform.
	//
	// Parameters:
	//   - delta: the zoom input
	Zoom(delta float32)

	// SyncCamera writes the camera's current matrices to its uniform.
	SyncCamera()

	// Render binds the camera once, then for every drawable entity in depth-first order binds its
	// world transform through a dynamic offset and draws each primitive with its material.
	// Must be called between Renderer.BeginFrame and Renderer.EndFrame.
	//
	// Returns:
	//   - error: an error if the camera uniform cannot be created
	Render() error

	// Release frees the installed model and the camera uniform. The material Defaults are not released.
	Release()
}

type scene struct {
	mu sync.RWMutex

	name      string
	cam       camera.Camera
	r         renderer.Renderer
	defaults  *material.Defaults
	wireframe bool

	mdl        model.Model
	draws      []draw
	state      State
	generation uint64
	lastErr    error
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera, renderer and fallback resources.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the camera the scene is viewed through
//   - r: the renderer to draw with
//   - defaults: the fallback resources models are built with
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, defaults *material.Defaults, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:     name,
		cam:      cam,
		r:        r,
		defaults: defaults,
		state:    StateUnloaded,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Model() model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mdl
}

func (s *scene) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *scene) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *scene) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *scene) Wireframe() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wireframe
}

func (s *scene) DrawCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.draws)
}

func (s *scene) BeginLoad(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation = generation
	s.state = StateLoading
}

func (s *scene) CompleteLoad(resp loader.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.Named("scene").With(
		zap.String("scene", s.name),
		zap.String("path", resp.Path),
		zap.Uint64("generation", resp.Generation),
	)

	if resp.Generation != s.generation {
		log.Info("discarding stale load response", zap.Uint64("latest", s.generation))
		return fmt.Errorf("generation %d, latest %d: %w", resp.Generation, s.generation, ErrStaleResponse)
	}

	err := resp.Err
	var m model.Model
	if err == nil {
		m, err = model.Build(s.r, resp.Resources, s.defaults, model.BuildOptions{
			Name:      modelName(resp),
			Wireframe: s.wireframe,
		})
	}
	if err == nil {
		err = s.install(m)
	}
	if err != nil {
		s.state = StateLoadFailed
		s.lastErr = err
		log.Error("load failed", zap.Error(err), zap.Bool("keeping_previous", s.mdl != nil))
		return err
	}

	s.state = StateLoaded
	s.lastErr = nil
	log.Info("model installed", zap.Int("draws", len(s.draws)), zap.Duration("decode", resp.Elapsed))
	return nil
}

func (s *scene) SetModel(m model.Model) error {
	if m == nil {
		s.ClearModel()
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.install(m); err != nil {
		return err
	}
	s.state = StateLoaded
	s.lastErr = nil
	return nil
}

func (s *scene) ClearModel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mdl != nil {
		s.mdl.Release()
	}
	s.mdl = nil
	s.draws = nil
	s.state = StateUnloaded
	s.lastErr = nil
}

func (s *scene) Resize(width, height int) {
	s.cam.Resize(width, height)
	s.SyncCamera()
}

func (s *scene) Rotate(dx, dy float32) {
	s.cam.Rotate(dx, dy)
	s.SyncCamera()
}

func (s *scene) Zoom(delta float32) {
	s.cam.Zoom(delta)
	s.SyncCamera()
}

func (s *scene) SyncCamera() {
	s.cam.Sync(s.r)
}

func (s *scene) Render() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return fmt.Errorf("scene %q has no renderer attached", s.name)
	}
	camProvider := s.cam.BindGroupProvider()
	if camProvider.BindGroup() == nil {
		if err := s.cam.Upload(s.r); err != nil {
			return fmt.Errorf("scene %q: %w", s.name, err)
		}
	}
	s.r.SetBindGroup(renderer.GroupCamera, camProvider, nil)

	if s.mdl == nil {
		return nil
	}
	uniforms := s.mdl.UniformArray().BindGroupProvider()
	offsets := make([]uint32, 1)
	for _, d := range s.draws {
		offsets[0] = d.offset
		s.r.SetBindGroup(renderer.GroupModel, uniforms, offsets)
		for i, p := range d.primitives {
			s.r.SetBindGroup(renderer.GroupMaterial, d.materials[i].BindGroupProvider(), nil)
			s.r.DrawIndexed(p.BindGroupProvider())
		}
	}
	return nil
}

func (s *scene) Release() {
	s.ClearModel()
	s.cam.Release()
}

// install resolves the draw list of m and makes it the active model, releasing the previous one.
// Caller must hold the write lock.
func (s *scene) install(m model.Model) error {
	draws, err := drawList(m)
	if err != nil {
		m.Release()
		return err
	}
	if s.mdl != nil && s.mdl != m {
		s.mdl.Release()
	}
	s.mdl = m
	s.draws = draws
	return nil
}

func drawList(m model.Model) ([]draw, error) {
	meshes := m.Meshes()
	uniforms := m.UniformArray()
	if uniforms == nil {
		return nil, fmt.Errorf("model %q has no uniform array", m.Name())
	}

	var draws []draw
	err := m.Walk(func(i int, e entity.Entity, _ mgl32.Mat4) error {
		idx := e.MeshIndex()
		if idx == nil {
			return nil
		}
		if *idx < 0 || *idx >= len(meshes) {
			return fmt.Errorf("entity %d has no mesh %d", i, *idx)
		}
		offset, err := uniforms.Offset(i)
		if err != nil {
			return err
		}
		d := draw{entity: i, offset: offset}
		for _, p := range meshes[*idx].Primitives {
			mat := m.MaterialFor(p)
			if mat == nil || mat.BindGroupProvider() == nil {
				return fmt.Errorf("entity %d primitive has no material bind group", i)
			}
			d.primitives = append(d.primitives, p)
			d.materials = append(d.materials, mat)
		}
		draws = append(draws, d)
		return nil
	})
	return draws, err
}

func modelName(resp loader.Response) string {
	if resp.Resources != nil && resp.Resources.Name != "" {
		return resp.Resources.Name
	}
	base := filepath.Base(resp.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
