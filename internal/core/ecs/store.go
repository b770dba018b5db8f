package ecs

// Removable lets the World clear an entity out of every store on destroy
// without knowing the stores' element types.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed sparse map of component records. Holding a component in
// a Store is what gives an entity the corresponding capability: systems
// query by "has records in stores A and B" rather than by entity kind.
// Records are stored by pointer; a mutation through a returned pointer is
// visible to every subsequent read in the same tick.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}
