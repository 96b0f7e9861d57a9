package memory

import "sync"

// Pool is a typed object pool.
// Objects handed back through Put are zeroed before reuse.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put returns v to the pool. The caller must not keep any reference to v.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	var zero T
	*v = zero
	p.p.Put(v)
}
