// This file is part of scanline.
//
// scanline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// scanline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with scanline.  If not, see <https://www.gnu.org/licenses/>.

package cmdring

import "sync"

// Registry pins Go values that can't be flattened into a gpucmd record —
// AsyncCall closures and Reconfigure settings snapshots — and hands out a
// uint64 token to carry through the ring instead. spec.md §4.1 describes the
// original as storing a type-erased callable with a stable address directly
// in ring memory and destructing it in place; a Go func value's bits stored
// that way would be invisible to the garbage collector, so the closure
// itself lives here, kept alive by this map, and only the token travels
// through ring bytes.
type Registry struct {
	mu        sync.Mutex
	next      uint64
	asyncFns  map[uint64]func()
	reconfigs map[uint64]any
}

func NewRegistry() *Registry {
	return &Registry{
		asyncFns:  make(map[uint64]func()),
		reconfigs: make(map[uint64]any),
	}
}

// StoreAsyncCall pins fn and returns the token an AsyncCallCommand should
// carry.
func (r *Registry) StoreAsyncCall(fn func()) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	token := r.next
	r.asyncFns[token] = fn
	return token
}

// TakeAsyncCall removes and returns the closure for token. The consumer
// calls this once, immediately before invoking it — mirroring "invoke it
// then run its destructor in place".
func (r *Registry) TakeAsyncCall(token uint64) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn := r.asyncFns[token]
	delete(r.asyncFns, token)
	return fn
}

// StoreReconfigure pins an arbitrary settings snapshot and returns the
// token a ReconfigureCommand should carry. The concrete type is decided by
// the caller (gpuworker), not by this package.
func (r *Registry) StoreReconfigure(settings any) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	token := r.next
	r.reconfigs[token] = settings
	return token
}

func (r *Registry) TakeReconfigure(token uint64) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.reconfigs[token]
	delete(r.reconfigs, token)
	return v
}
