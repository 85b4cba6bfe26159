// bufferpool.go - process-wide pool of reusable float32 buffers

package synthcore

import "sync"

// SharedBufferPool is the only legal allocator on the produce hot path.
// claim grows an idle buffer in place or allocates a new one; release
// marks a buffer idle again. In-use buffers are never resized or
// reallocated out from under their holder.
type SharedBufferPool struct {
	mu      sync.Mutex
	idle    [][]float32
	inUse   int
}

func NewSharedBufferPool() *SharedBufferPool {
	return &SharedBufferPool{}
}

// Claim returns a buffer of length exactly minLen. Its contents are
// unspecified; callers that need zeroed memory must zero it themselves.
func (p *SharedBufferPool) Claim(minLen int) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		buf := p.idle[n-1]
		p.idle = p.idle[:n-1]
		if cap(buf) < minLen {
			buf = make([]float32, minLen)
		} else {
			buf = buf[:minLen]
		}
		p.inUse++
		return buf, nil
	}

	buf := make([]float32, minLen)
	p.inUse++
	return buf, nil
}

// Release returns a claimed buffer to the idle list.
func (p *SharedBufferPool) Release(buf []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, buf)
	p.inUse--
}

// InUse reports the number of buffers currently claimed - used by tests to
// verify pool hygiene (testable property 7).
func (p *SharedBufferPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}
