package shepherd

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/lockbox/internal/logger"
)

// Pool is a fixed set of shepherds sharing one set of collaborators.
type Pool struct {
	shepherds []*Shepherd
	wg        sync.WaitGroup
}

// NewPool returns n shepherds named shepherd-0 .. shepherd-(n-1).
func NewPool(n int, deps Dependencies, opts Options, log *logger.Logger) *Pool {
	p := &Pool{shepherds: make([]*Shepherd, 0, n)}
	for i := range n {
		p.shepherds = append(p.shepherds, New(fmt.Sprintf("shepherd-%d", i), deps, opts, log))
	}
	return p
}

// Shepherds returns the pool members.
func (p *Pool) Shepherds() []*Shepherd {
	return p.shepherds
}

// Run starts every shepherd and blocks until all of them have stopped.
func (p *Pool) Run(ctx context.Context) {
	for _, s := range p.shepherds {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			s.Run(ctx)
		}()
	}
	p.wg.Wait()
}

// Shutdown asks every shepherd to stop after its current job.
func (p *Pool) Shutdown() {
	for _, s := range p.shepherds {
		s.Shutdown()
	}
}
