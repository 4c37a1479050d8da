package pool

import "bytes"

// Resettable is implemented by values that can be cleared for reuse.
type Resettable interface {
	Reset()
}

// Pool is a bounded free list of reusable values. Unlike sync.Pool it never
// drops idle values on GC, which keeps allocation steady under bursty load.
type Pool[T Resettable] struct {
	items   chan T
	newItem func() T
}

// New creates a Pool holding at most capacity idle values. newItem is
// called when the pool is empty.
func New[T Resettable](capacity int, newItem func() T) *Pool[T] {
	return &Pool[T]{
		items:   make(chan T, capacity),
		newItem: newItem,
	}
}

// Get returns an idle value or a fresh one.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		return p.newItem()
	}
}

// Put resets item and keeps it for reuse. It is discarded when the pool is full.
func (p *Pool[T]) Put(item T) {
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Len returns the number of idle values.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// maxBufferSize bounds the buffers kept by BufferPool so one large
// response does not pin its memory forever.
const maxBufferSize = 64 << 10

// BufferPool pools bytes.Buffers used to encode responses.
type BufferPool struct {
	pool *Pool[*bytes.Buffer]
}

func NewBufferPool(capacity int) *BufferPool {
	return &BufferPool{
		pool: New(capacity, func() *bytes.Buffer { return new(bytes.Buffer) }),
	}
}

func (b *BufferPool) Get() *bytes.Buffer {
	return b.pool.Get()
}

func (b *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > maxBufferSize {
		return
	}
	b.pool.Put(buf)
}
