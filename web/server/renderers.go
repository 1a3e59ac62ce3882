package server

import (
	"context"
	"sync"

	"github.com/df07/go-dof-raytracer/pkg/renderer"
)

// rendererPool hands out up to size long-lived renderers, one request at a
// time each, so worker goroutines and sample grids are reused across
// requests
type rendererPool struct {
	newRenderer func() (*renderer.Renderer, error)
	idle        chan *renderer.Renderer

	mu      sync.Mutex
	created int
	size    int
	closed  bool
}

func newRendererPool(size int, newRenderer func() (*renderer.Renderer, error)) *rendererPool {
	if size < 1 {
		size = 1
	}
	return &rendererPool{
		newRenderer: newRenderer,
		idle:        make(chan *renderer.Renderer, size),
		size:        size,
	}
}

// acquire returns an idle renderer, creating one while under the size
// limit, otherwise waiting for a release or ctx
func (p *rendererPool) acquire(ctx context.Context) (*renderer.Renderer, error) {
	select {
	case r := <-p.idle:
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, renderer.ErrRendererClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		r, err := p.newRenderer()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return r, nil
	}
	p.mu.Unlock()

	select {
	case r := <-p.idle:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release returns a renderer to the pool, or closes it once the pool is closed
func (p *rendererPool) release(r *renderer.Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		r.Close()
		return
	}
	// Never blocks: at most size renderers exist
	p.idle <- r
}

// Close stops every idle renderer. Renderers still checked out are closed on
// release.
func (p *rendererPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	for {
		select {
		case r := <-p.idle:
			r.Close()
		default:
			return
		}
	}
}
