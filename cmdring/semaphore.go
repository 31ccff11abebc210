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

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore built on golang.org/x/sync/semaphore,
// standing in for the two OS-level counting semaphores ("thread_wake",
// "thread_is_done") the wake protocol is specified against. A Weighted
// semaphore of size math.MaxInt64 with every permit acquired up front never
// blocks on Post (Release), so it behaves like an unbounded-count counting
// semaphore: Post accumulates a permit, Wait consumes one, blocking if none
// are available.
type Semaphore struct {
	w *semaphore.Weighted
}

func NewSemaphore() *Semaphore {
	w := semaphore.NewWeighted(math.MaxInt64)
	// Hold every permit so the semaphore starts with a count of zero.
	_ = w.Acquire(context.Background(), math.MaxInt64)
	return &Semaphore{w: w}
}

func (s *Semaphore) Post() {
	s.w.Release(1)
}

// Wait blocks until a permit is available or ctx is done.
func (s *Semaphore) Wait(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}
