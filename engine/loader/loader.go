// Package loader decodes assets off the render goroutine. Each request is tagged with a
// generation number so the consumer can discard responses that a newer request superseded.
package loader

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"go.uber.org/zap"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Response is the outcome of one Request. Exactly one of Resources and Err is set.
type Response struct {
	Generation uint64
	Path       string
	Resources  *resources.Resources
	Err        error
	Elapsed    time.Duration
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.Mutex

	backends   map[string]loaderBackend
	fallback   loaderBackend
	generation atomic.Uint64

	workers    int
	queueSize  int
	bufferSize int

	pool      worker.DynamicWorkerPool
	responses chan Response
	done      chan struct{}
	closed    bool
}

// Loader defines the public-facing asynchronous load protocol. Requests decode on a worker
// pool; results arrive on Responses in completion order, which may differ from request order.
type Loader interface {
	// Request starts decoding the asset at path and returns the generation assigned to it.
	// The generation is strictly greater than that of every earlier request. After Close the
	// request is dropped and no response is published.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - uint64: the request generation
	Request(path string) uint64

	// Responses returns the channel results are published on.
	//
	// Returns:
	//   - <-chan Response: the response channel
	Responses() <-chan Response

	// Latest returns the generation of the most recent request, or 0 before the first.
	//
	// Returns:
	//   - uint64: the newest generation
	Latest() uint64

	// IsStale reports whether a response was superseded by a newer request.
	//
	// Parameters:
	//   - resp: the response to check
	//
	// Returns:
	//   - bool: true if resp.Generation is not the latest
	IsStale(resp Response) bool

	// Close stops the worker pool. Pending decodes finish but their responses are dropped.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		backends:   make(map[string]loaderBackend),
		workers:    max(runtime.NumCPU()/2, 1),
		queueSize:  16,
		bufferSize: 4,
		done:       make(chan struct{}),
	}

	switch backendType {
	case BackendTypeGLTF:
		gltf := newGLTFLoaderBackend()
		l.backends[".gltf"] = gltf
		l.backends[".glb"] = gltf
	}

	for _, option := range options {
		option(l)
	}

	l.responses = make(chan Response, l.bufferSize)
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, time.Second)
	return l
}

func (l *loader) Request(path string) uint64 {
	gen := l.generation.Add(1)
	log := logger.Named("loader").With(zap.String("path", path), zap.Uint64("generation", gen))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		log.Warn("load request dropped, loader is closed")
		return gen
	}
	log.Info("load requested")

	l.pool.SubmitTask(worker.Task{
		ID:      int(gen),
		Payload: path,
		Do: func() (any, error) {
			resp := l.decode(gen, path)
			l.publish(resp)
			return resp, resp.Err
		},
	})
	return gen
}

func (l *loader) Responses() <-chan Response {
	return l.responses
}

func (l *loader) Latest() uint64 {
	return l.generation.Load()
}

func (l *loader) IsStale(resp Response) bool {
	return resp.Generation != l.generation.Load()
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
	l.pool.ClearTaskQueue()
	l.pool.Stop()
}

func (l *loader) decode(gen uint64, path string) Response {
	start := time.Now()
	resp := Response{Generation: gen, Path: path}

	backend, err := l.resolveBackend(path)
	if err == nil {
		resp.Resources, err = backend.Load(path)
	}
	resp.Err = err
	resp.Elapsed = time.Since(start)

	log := logger.Named("loader").With(
		zap.String("path", path),
		zap.Uint64("generation", gen),
		zap.Duration("elapsed", resp.Elapsed),
	)
	if err != nil {
		log.Warn("load failed", zap.Error(err))
	} else {
		log.Info("load decoded",
			zap.Int("meshes", len(resp.Resources.Meshes)),
			zap.Int("nodes", len(resp.Resources.Nodes)),
			zap.Int("images", len(resp.Resources.Images)),
		)
	}
	return resp
}

func (l *loader) publish(resp Response) {
	select {
	case l.responses <- resp:
	case <-l.done:
		logger.Named("loader").Debug("response dropped after close", zap.Uint64("generation", resp.Generation))
	}
}

// resolveBackend selects the backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	if l.fallback != nil {
		return l.fallback, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if b, ok := l.backends[ext]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("unsupported file extension %q: %w", ext, common.ErrImport)
}
