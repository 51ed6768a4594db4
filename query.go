package depot

// ComponentRef is anything carrying a component index: ComponentType and the
// typed AccessibleComponent handles.
type ComponentRef interface {
	ComponentIndex() uint32
}

// ComponentIndex implements ComponentRef.
func (c ComponentType) ComponentIndex() uint32 { return c.index }

// ArrayRef is anything carrying an array index.
type ArrayRef interface {
	ArrayIndex() uint32
}

// ArrayIndex implements ArrayRef.
func (a ArrayType) ArrayIndex() uint32 { return a.index }

// TagRef is anything carrying a tag index.
type TagRef interface {
	TagIndex() uint32
}

// TagIndex implements TagRef.
func (t TagType) TagIndex() uint32 { return t.index }

// Query matches chunks whose Definition carries every required component,
// array, and tag and none of the excluded components.
type Query struct {
	required       BitMask
	excluded       BitMask
	requiredArrays BitMask
	requiredTags   BitMask
}

func newQuery() *Query {
	return &Query{}
}

// With requires the given components.
func (q *Query) With(components ...ComponentRef) *Query {
	for _, c := range components {
		q.required.Set(c.ComponentIndex())
	}
	return q
}

// Without excludes chunks carrying any of the given components.
func (q *Query) Without(components ...ComponentRef) *Query {
	for _, c := range components {
		q.excluded.Set(c.ComponentIndex())
	}
	return q
}

// WithArrays requires the given array attachments.
func (q *Query) WithArrays(arrays ...ArrayRef) *Query {
	for _, a := range arrays {
		q.requiredArrays.Set(a.ArrayIndex())
	}
	return q
}

// WithTags requires the given tags.
func (q *Query) WithTags(tags ...TagRef) *Query {
	for _, t := range tags {
		q.requiredTags.Set(t.TagIndex())
	}
	return q
}

// Matches evaluates the predicate against a chunk's Definition.
func (q *Query) Matches(c *Chunk) bool {
	def := c.Definition()
	return def.components.ContainsAll(q.required) &&
		def.components.ContainsNone(q.excluded) &&
		def.arrays.ContainsAll(q.requiredArrays) &&
		def.tags.ContainsAll(q.requiredTags)
}
