package ecs

// World owns the entity pool, the set of registered component stores, and a
// deferred destruction queue flushed at tick end by the cleanup system.
// Destroying mid-tick would invalidate pointers other systems still hold
// this tick, so destruction is always queued.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	w := &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 16),
		destroyQueue: make([]EntityID, 0, 64),
	}
	// Burn slot zero so the zero EntityID stays a usable "none" sentinel.
	reserved := w.pool.Create()
	w.pool.Destroy(reserved)
	return w
}

// RegisterStore adds a component store for bulk cleanup on entity destroy.
func (w *World) RegisterStore(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components
// from every registered store.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
