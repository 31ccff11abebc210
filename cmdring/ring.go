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

// Package cmdring implements the single-producer/single-consumer byte ring
// carrying gpucmd records from the emulated-CPU thread to the GPU thread.
package cmdring

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/scanlinevm/scanline/gpucmd"
)

// DefaultWakeThreshold is the default pending-byte count that triggers an
// unsolicited consumer wakeup from Publish.
const DefaultWakeThreshold = 64 * 1024

// DefaultCapacity matches the console's actual command buffer size closely
// enough to exercise wraparound under sustained load without needing an
// enormous backing array in tests.
const DefaultCapacity = 16 * 1024 * 1024

// Ring is a fixed-capacity byte ring holding a sequence of gpucmd records.
// Exactly one goroutine may call the producer methods (Allocate, Publish,
// PublishAndWake, PublishAndSync) and exactly one goroutine may call the consumer
// methods (Pop, Advance, ParkForWork, NotifyIfDrained); the two sides
// synchronize only through the atomic cursors and semaphores below.
type Ring struct {
	buf      []byte
	capacity uint32

	writeOff atomic.Uint32 // published by producer, read by both
	readOff  atomic.Uint32 // published by consumer, read by both

	// pendingWakes is the wake counter from spec.md §5: producer fetch-adds
	// 2 on every wake, and posts consumerWake whenever that add crosses
	// from negative to non-negative. A value of -1 means the consumer has
	// parked and is waiting on consumerWake.
	//
	// The original protocol packs a second bit ("CPU_WAITING") into the
	// same word; this implementation keeps that as the separate
	// producerWaiting flag below instead of bit-packing it into
	// pendingWakes, for the same observable behavior with less bit
	// twiddling (see DESIGN.md).
	pendingWakes atomic.Int32

	// producerWaiting is set while a producer is blocked inside PublishAndSync,
	// waiting for the consumer to drain to the current write cursor.
	producerWaiting atomic.Bool

	consumerWake *Semaphore // producer posts, consumer waits (thread_wake)
	syncDone     *Semaphore // consumer posts, producer waits (thread_is_done)

	// WakeThreshold is the pending-byte count that makes Publish behave
	// like PublishAndWake. Configurable per spec.md §9's open question;
	// zero means "always wake" (equivalent to PublishAndWake).
	WakeThreshold uint32
	unsignaled    atomic.Uint32
}

// New allocates a ring with the given byte capacity, rounded up to a
// multiple of gpucmd.Align.
func New(capacity uint32) *Ring {
	capacity = gpucmd.AlignSize(capacity)
	return &Ring{
		buf:           make([]byte, capacity),
		capacity:      capacity,
		consumerWake:  NewSemaphore(),
		syncDone:      NewSemaphore(),
		WakeThreshold: DefaultWakeThreshold,
	}
}

// freeBytes returns how many bytes may be written starting at w without
// catching up to read, reserving one byte so write==read stays
// unambiguously "empty".
func (r *Ring) freeBytes(w, read uint32) uint32 {
	used := (w - read + r.capacity) % r.capacity
	return r.capacity - used - 1
}

// Allocate reserves size bytes (rounded up to gpucmd.Align) for a record of
// the given type and returns a slice of exactly that length along with its
// offset in the ring, ready for the caller to gpucmd.Command.Encode into.
// It blocks — spinning and signaling the consumer — until enough space is
// free, per spec.md §4.2.
func (r *Ring) Allocate(ctx context.Context, size uint32) (slot []byte, offset uint32, err error) {
	size = gpucmd.AlignSize(size)
	if size > r.capacity {
		panic("cmdring: record larger than ring capacity")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		w := r.writeOff.Load()
		read := r.readOff.Load()

		if w+size <= r.capacity {
			if r.freeBytes(w, read) >= size {
				return r.buf[w : w+size : w+size], w, nil
			}
		} else {
			tail := r.capacity - w
			needed := tail + size
			if r.freeBytes(w, read) >= needed {
				r.writeWraparound(w, tail)
				continue
			}
		}

		r.wakeConsumer()
		runtime.Gosched()
	}
}

// writeWraparound stamps a Wraparound record covering [w, w+tail) and
// publishes it, so the consumer skips straight to offset 0.
func (r *Ring) writeWraparound(w, tail uint32) {
	gpucmd.PutHeader(r.buf[w:w+tail], gpucmd.Header{Type: gpucmd.Wraparound, Size: tail})
	r.publishTo(w + tail)
}

// publishTo advances writeOff to newWrite with release ordering and wraps
// back to 0 if newWrite reached the end of the backing array exactly.
func (r *Ring) publishTo(newWrite uint32) {
	if newWrite == r.capacity {
		newWrite = 0
	}
	r.writeOff.Store(newWrite)
}

// wakeConsumer implements the "producer wake" step of spec.md §5's wake
// protocol.
func (r *Ring) wakeConsumer() {
	prior := r.pendingWakes.Add(2) - 2
	if prior < 0 {
		r.consumerWake.Post()
	}
}

// Publish advances the write cursor past a slot returned by Allocate.
// Unsolicited consumer wakeups only happen once total unsignaled bytes
// crosses WakeThreshold; use PublishAndWake to force one, or PublishAndSync
// to additionally block for drain.
func (r *Ring) Publish(offset, size uint32) {
	size = gpucmd.AlignSize(size)
	r.publishTo(offset + size)

	pending := r.unsignaled.Add(size)
	if pending >= r.WakeThreshold {
		r.unsignaled.Store(0)
		r.wakeConsumer()
	}
}

// PublishAndWake advances the write cursor and unconditionally signals the
// consumer.
func (r *Ring) PublishAndWake(offset, size uint32) {
	size = gpucmd.AlignSize(size)
	r.publishTo(offset + size)
	r.unsignaled.Store(0)
	r.wakeConsumer()
}

// PublishAndSync publishes, wakes the consumer, then blocks until the
// consumer has drained the ring up to (at least) the newly published write
// cursor, per spec.md §5's "producer sync" step: a bounded busy spin
// followed by a semaphore wait if the consumer hasn't caught up in time.
func (r *Ring) PublishAndSync(ctx context.Context, offset, size uint32, spinBudget time.Duration) error {
	r.PublishAndWake(offset, size)
	return r.sync(ctx, spinBudget)
}

func (r *Ring) sync(ctx context.Context, spinBudget time.Duration) error {
	target := r.writeOff.Load()
	deadline := time.Now().Add(spinBudget)
	for time.Now().Before(deadline) {
		if r.readOff.Load() == target {
			return nil
		}
		runtime.Gosched()
	}

	r.producerWaiting.Store(true)
	defer r.producerWaiting.Store(false)
	if r.readOff.Load() == target {
		return nil
	}
	return r.syncDone.Wait(ctx)
}

// Pop returns the next unread record's bytes (header included) without
// advancing the read cursor, transparently skipping and consuming any
// Wraparound marker it encounters. ok is false if the ring is currently
// empty.
func (r *Ring) Pop() (rec []byte, offset uint32, ok bool) {
	for {
		read := r.readOff.Load()
		w := r.writeOff.Load()
		if read == w {
			return nil, 0, false
		}
		h := gpucmd.GetHeader(r.buf[read:])
		if h.Type == gpucmd.Wraparound {
			r.readOff.Store(0)
			continue
		}
		return r.buf[read : read+h.Size], read, true
	}
}

// Advance publishes a new read cursor past a record returned by Pop, with
// release ordering matching the acquire on writeOff that Pop performed.
func (r *Ring) Advance(offset, size uint32) {
	next := offset + size
	if next == r.capacity {
		next = 0
	}
	r.readOff.Store(next)
}

// ParkForWork blocks the consumer until either work is already indicated by
// the wake counter or a producer wake arrives, per spec.md §5's "consumer
// sleep attempt". Callers should still re-check Pop after ParkForWork
// returns, since the wake counter is a coalesced hint, not a precise queue
// depth.
func (r *Ring) ParkForWork(ctx context.Context) error {
	for {
		cur := r.pendingWakes.Load()
		if cur > 0 {
			if r.pendingWakes.CompareAndSwap(cur, cur-2) {
				return nil
			}
			continue
		}
		if r.pendingWakes.CompareAndSwap(cur, -1) {
			return r.consumerWake.Wait(ctx)
		}
	}
}

// NotifyIfDrained posts the producer's completion semaphore if a producer
// is currently blocked in PublishAndSync and the ring has caught up to the write
// cursor. The consumer loop should call this after every Advance.
func (r *Ring) NotifyIfDrained() {
	if r.producerWaiting.Load() && r.readOff.Load() == r.writeOff.Load() {
		r.syncDone.Post()
	}
}

// Capacity returns the ring's fixed byte capacity.
func (r *Ring) Capacity() uint32 { return r.capacity }
