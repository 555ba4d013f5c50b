package i2cm

import (
	"context"
	"fmt"
	"sync"
)

// Registry maps bus ids to registered buses and fronts them with the
// two public transaction entry points. It replaces ambient per-process
// handle state: construct one, register the buses the deployment owns,
// and hand it to whoever runs transactions. The zero value is ready to
// use. Registration is locked; transactions on one bus are not, see
// Engine.
type Registry struct {
	mx    sync.RWMutex
	buses map[int]Bus
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(id int, bus Bus) error {
	if bus == nil {
		return fmt.Errorf("refusing to register nil bus %d", id)
	}
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.buses == nil {
		r.buses = make(map[int]Bus)
	}
	if _, ok := r.buses[id]; ok {
		return fmt.Errorf("bus %d is already registered", id)
	}
	r.buses[id] = bus
	return nil
}

func (r *Registry) Deregister(id int) {
	r.mx.Lock()
	defer r.mx.Unlock()
	delete(r.buses, id)
}

func (r *Registry) Lookup(id int) (Bus, bool) {
	r.mx.RLock()
	defer r.mx.RUnlock()
	bus, ok := r.buses[id]
	return bus, ok
}

// MasterWrite runs a blocking write transaction on the identified bus.
// An unregistered id fails with ErrUnknownBus before any register is
// touched.
func (r *Registry) MasterWrite(ctx context.Context, id int, address byte, data []byte) error {
	bus, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("bus %d: %w", id, ErrUnknownBus)
	}
	return bus.WriteToAddr(ctx, address, data)
}

// MasterRead runs a blocking read transaction on the identified bus.
func (r *Registry) MasterRead(ctx context.Context, id int, address byte, buffer []byte) error {
	bus, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("bus %d: %w", id, ErrUnknownBus)
	}
	return bus.ReadFromAddr(ctx, address, buffer)
}
