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

package gpuworker

import (
	"context"
	"time"

	"github.com/scanlinevm/scanline/cmdring"
	"github.com/scanlinevm/scanline/gpucmd"
)

// defaultSyncSpinBudget matches spec.md §5's x86 figure; ARM64 callers can
// construct a Producer with a larger budget via NewProducerWithSpinBudget.
const defaultSyncSpinBudget = 50 * time.Microsecond

// Producer is the emulated-CPU thread's side of the command ring: it
// encodes gpucmd records, allocates space for them, and publishes. Exactly
// one goroutine should ever call its methods, matching the ring's
// single-producer contract.
type Producer struct {
	ring       *cmdring.Ring
	registry   *cmdring.Registry
	spinBudget time.Duration
}

// NewProducer wraps ring/registry for command encoding. Both must be the
// same instances a Worker was constructed with.
func NewProducer(ring *cmdring.Ring, registry *cmdring.Registry) *Producer {
	return &Producer{ring: ring, registry: registry, spinBudget: defaultSyncSpinBudget}
}

// NewProducerWithSpinBudget is NewProducer with a platform-specific sync
// spin budget (spec.md §5 gives 200 µs for ARM64).
func NewProducerWithSpinBudget(ring *cmdring.Ring, registry *cmdring.Registry, spinBudget time.Duration) *Producer {
	return &Producer{ring: ring, registry: registry, spinBudget: spinBudget}
}

// Send allocates, encodes and publishes cmd, waking the consumer only once
// the pending-byte threshold is crossed.
func (p *Producer) Send(ctx context.Context, cmd gpucmd.Command, params gpucmd.Params) error {
	slot, offset, err := p.ring.Allocate(ctx, cmd.Size())
	if err != nil {
		return err
	}
	cmd.Encode(slot, params)
	p.ring.Publish(offset, cmd.Size())
	return nil
}

// SendAndWake is Send but always signals the consumer immediately.
func (p *Producer) SendAndWake(ctx context.Context, cmd gpucmd.Command, params gpucmd.Params) error {
	slot, offset, err := p.ring.Allocate(ctx, cmd.Size())
	if err != nil {
		return err
	}
	cmd.Encode(slot, params)
	p.ring.PublishAndWake(offset, cmd.Size())
	return nil
}

// SendAndSync is Send but blocks until the consumer has drained the ring up
// to and including cmd, per spec.md §4.2's publish_and_sync.
func (p *Producer) SendAndSync(ctx context.Context, cmd gpucmd.Command, params gpucmd.Params) error {
	slot, offset, err := p.ring.Allocate(ctx, cmd.Size())
	if err != nil {
		return err
	}
	cmd.Encode(slot, params)
	return p.ring.PublishAndSync(ctx, offset, cmd.Size(), p.spinBudget)
}

// AsyncCall registers fn with the registry and publishes an AsyncCall
// command carrying its token, per spec.md §4.1/§9's type-erased async call.
func (p *Producer) AsyncCall(ctx context.Context, fn func()) error {
	token := p.registry.StoreAsyncCall(fn)
	return p.Send(ctx, gpucmd.AsyncCallCommand{Token: token}, 0)
}

// Reconfigure publishes req and blocks until the worker has processed it,
// returning the ReconfigureResult the worker wrote into req.Result. This is
// the synchronous request/response path spec.md §4.3.1 describes ("the
// reconfigure result is placed back into the command before the producer's
// sync call returns").
func (p *Producer) Reconfigure(ctx context.Context, req *ReconfigureRequest) (*ReconfigureResult, error) {
	req.Result = &ReconfigureResult{}
	token := p.registry.StoreReconfigure(req)
	if err := p.SendAndSync(ctx, gpucmd.ReconfigureCommand{Token: token}, 0); err != nil {
		return nil, err
	}
	return req.Result, nil
}

// Shutdown publishes the terminal Shutdown command. The caller must not
// publish anything else afterward (spec.md §5, "Shutdown must be the last
// slot ever published").
func (p *Producer) Shutdown(ctx context.Context) error {
	return p.SendAndWake(ctx, gpucmd.ShutdownCommand{}, 0)
}
