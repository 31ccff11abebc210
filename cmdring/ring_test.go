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
	"testing"
	"time"

	"github.com/scanlinevm/scanline/gpucmd"
)

func mustAllocate(t *testing.T, r *Ring, cmd gpucmd.Command, params gpucmd.Params) (offset, size uint32) {
	t.Helper()
	size = cmd.Size()
	slot, offset, err := r.Allocate(context.Background(), size)
	if err != nil {
		t.Fatal(err)
	}
	cmd.Encode(slot, params)
	return offset, size
}

func TestAllocatePublishPopRoundTrips(t *testing.T) {
	r := New(4096)
	cmd := gpucmd.FillVRAMCommand{X: 1, Y: 2, Width: 3, Height: 4, Color: 0x1234}
	offset, size := mustAllocate(t, r, cmd, 0)
	r.Publish(offset, size)

	rec, popOffset, ok := r.Pop()
	if !ok {
		t.Fatal("expected a record")
	}
	if popOffset != offset {
		t.Fatalf("offset mismatch: got %d, want %d", popOffset, offset)
	}
	_, decoded, err := gpucmd.Decode(rec)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(gpucmd.FillVRAMCommand)
	if got != cmd {
		t.Fatalf("got %+v, want %+v", got, cmd)
	}
	r.Advance(popOffset, size)

	if _, _, ok := r.Pop(); ok {
		t.Fatal("expected ring to be empty after draining the only record")
	}
}

func TestWraparoundSkipsToOffsetZero(t *testing.T) {
	// Small ring: capacity 64. One 28-byte fill is published and drained,
	// then both cursors are moved to capacity-8 so the next fill must wrap.
	r := New(64)
	fill := gpucmd.FillVRAMCommand{Width: 1, Height: 1}

	o1, s1 := mustAllocate(t, r, fill, 0)
	r.Publish(o1, s1)
	rec1, pop1, ok := r.Pop()
	if !ok {
		t.Fatal("expected first record")
	}
	if len(rec1) != int(s1) {
		t.Fatalf("record length %d, want %d", len(rec1), s1)
	}
	r.Advance(pop1, s1)

	// Force writeOff near the end so the next allocation must wrap.
	r.writeOff.Store(r.capacity - 8)
	r.readOff.Store(r.capacity - 8)

	o2, s2 := mustAllocate(t, r, fill, 0)
	if o2 != 0 {
		t.Fatalf("expected wraparound allocation at offset 0, got %d", o2)
	}
	r.Publish(o2, s2)

	rec2, pop2, ok := r.Pop()
	if !ok {
		t.Fatal("expected second record after wraparound")
	}
	if pop2 != 0 {
		t.Fatalf("expected consumer to land at offset 0 after skipping Wraparound, got %d", pop2)
	}
	_, decoded, err := gpucmd.Decode(rec2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded.(gpucmd.FillVRAMCommand); !ok {
		t.Fatalf("unexpected decoded type %T", decoded)
	}
}

func TestPublishAndSyncReturnsOnceConsumerDrains(t *testing.T) {
	r := New(4096)
	cmd := gpucmd.FillVRAMCommand{Width: 1, Height: 1}
	size := cmd.Size()
	slot, offset, err := r.Allocate(context.Background(), size)
	if err != nil {
		t.Fatal(err)
	}
	cmd.Encode(slot, 0)

	done := make(chan error, 1)
	go func() {
		done <- r.PublishAndSync(context.Background(), offset, size, time.Millisecond)
	}()

	// Give the spin phase time to expire so Sync falls through to the
	// semaphore wait before we drain.
	time.Sleep(5 * time.Millisecond)

	rec, popOff, ok := r.Pop()
	if !ok {
		t.Fatal("expected a record for the consumer to drain")
	}
	r.Advance(popOff, uint32(len(rec)))
	r.NotifyIfDrained()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("PublishAndSync returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("PublishAndSync did not return after consumer drained")
	}
}

func TestParkForWorkWakesOnPublish(t *testing.T) {
	r := New(4096)

	parked := make(chan struct{})
	woken := make(chan error, 1)
	go func() {
		close(parked)
		woken <- r.ParkForWork(context.Background())
	}()

	<-parked
	time.Sleep(5 * time.Millisecond) // let ParkForWork actually reach the semaphore wait

	cmd := gpucmd.FillVRAMCommand{Width: 1, Height: 1}
	offset, size := mustAllocate(t, r, cmd, 0)
	r.PublishAndWake(offset, size)

	select {
	case err := <-woken:
		if err != nil {
			t.Fatalf("ParkForWork returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ParkForWork did not wake after PublishAndWake")
	}
}

func TestAllocateRejectsRecordLargerThanCapacity(t *testing.T) {
	r := New(64)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for oversized allocation")
		}
	}()
	_, _, _ = r.Allocate(context.Background(), 128)
}

func TestRegistryStoreAndTakeAsyncCall(t *testing.T) {
	reg := NewRegistry()
	called := false
	token := reg.StoreAsyncCall(func() { called = true })

	fn := reg.TakeAsyncCall(token)
	if fn == nil {
		t.Fatal("expected a function")
	}
	fn()
	if !called {
		t.Fatal("closure was not the one stored")
	}
	if fn2 := reg.TakeAsyncCall(token); fn2 != nil {
		t.Fatal("expected token to be consumed after first Take")
	}
}
