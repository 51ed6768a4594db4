package depot

import "reflect"

// factory implements the factory pattern for depot components.
type factory struct{}

// Factory is the global factory instance for creating depot objects.
var Factory factory

// NewSchema creates an empty Schema.
func (f factory) NewSchema() *Schema {
	return newSchema()
}

// NewWorld creates a World from the given configuration.
func (f factory) NewWorld(cfg WorldConfig) (*World, error) {
	return newWorld(cfg)
}

// NewQuery creates an empty Query.
func (f factory) NewQuery() *Query {
	return newQuery()
}

// NewCursor creates a Cursor over the given query and world.
func (f factory) NewCursor(query *Query, world *World) *Cursor {
	return newCursor(query, world)
}

// NewOperation creates an empty Operation buffer.
func (f factory) NewOperation() *Operation {
	return newOperation()
}

// RegisterComponent registers T in the schema's component namespace and
// returns a typed handle. Registration is idempotent.
func RegisterComponent[T any](s *Schema) (AccessibleComponent[T], error) {
	ct, err := s.RegisterComponentOf(reflect.TypeFor[T]())
	if err != nil {
		return AccessibleComponent[T]{}, err
	}
	return AccessibleComponent[T]{ComponentType: ct}, nil
}

// RegisterArray registers T in the schema's array namespace and returns a
// typed handle.
func RegisterArray[T any](s *Schema) (AccessibleArray[T], error) {
	at, err := s.RegisterArrayOf(reflect.TypeFor[T]())
	if err != nil {
		return AccessibleArray[T]{}, err
	}
	return AccessibleArray[T]{ArrayType: at}, nil
}

// RegisterTag registers T in the schema's tag namespace.
func RegisterTag[T any](s *Schema) (TagType, error) {
	return s.RegisterTagOf(reflect.TypeFor[T]())
}
