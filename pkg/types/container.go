package types

// Direction moves a record up (towards index 0) or down the list.
type Direction int

// Move directions.
const (
	Up   Direction = -1
	Down Direction = 1
)

// Container is the metadata scope attached to one host collection.
type Container struct {
	ID       string         // Generated on first serialization, then immutable.
	Name     string         // Host collection name.
	Kind     CollectionKind // multi or single visible mesh.
	Menu     *Menu          // Optional menu descriptor.
	Records  []*Record
	Selected int // List cursor; kept in range by Remove and Move.
}

// NewContainer returns an empty multi-mesh container for the named
// collection. The ID is left blank until EnsureID is called.
func NewContainer(name string) *Container {
	return &Container{Name: name, Kind: CollectionMulti}
}

// Len returns the number of records.
func (c *Container) Len() int {
	return len(c.Records)
}

// At returns the record at index, or nil if the index is out of range.
func (c *Container) At(index int) *Record {
	if index < 0 || index >= len(c.Records) {
		return nil
	}
	return c.Records[index]
}

// Add appends a default record of type t and returns its index. Returns -1
// without touching the container if t is not a valid trait type.
func (c *Container) Add(t TraitType) int {
	r := NewRecord(t)
	if r == nil {
		return -1
	}
	return c.Append(r)
}

// Append adds r at the end of the list and returns its index.
func (c *Container) Append(r *Record) int {
	c.Records = append(c.Records, r)
	return len(c.Records) - 1
}

// Remove deletes the record at index and moves Selected to the previous
// record. Out-of-range indexes and empty containers are a no-op.
func (c *Container) Remove(index int) {
	if index < 0 || index >= len(c.Records) {
		return
	}
	copy(c.Records[index:], c.Records[index+1:])
	c.Records[len(c.Records)-1] = nil
	c.Records = c.Records[:len(c.Records)-1]
	c.Selected = min(max(0, index-1), len(c.Records)-1)
}

// Move swaps the record at index with its neighbor in direction dir and
// returns the record's new index, which is also stored in Selected. At the
// edges of the list the move is ignored.
func (c *Container) Move(index int, dir Direction) int {
	if index < 0 || index >= len(c.Records) {
		return index
	}
	target := index
	switch {
	case dir < 0 && index > 0:
		target = index - 1
	case dir > 0 && index < len(c.Records)-1:
		target = index + 1
	}
	c.Records[index], c.Records[target] = c.Records[target], c.Records[index]
	c.Selected = target
	return target
}

// ReorderByType groups records by trait type in priority order, keeping
// the relative order of records within each group.
func (c *Container) ReorderByType() {
	if len(c.Records) < 2 {
		return
	}
	buckets := make([][]*Record, len(TraitTypes))
	for _, r := range c.Records {
		t := r.Type()
		buckets[t] = append(buckets[t], r)
	}
	ordered := c.Records[:0]
	for _, b := range buckets {
		ordered = append(ordered, b...)
	}
	c.Records = ordered
}

// HasTrait reports whether a record of type t with the given name exists.
func (c *Container) HasTrait(t TraitType, name string) bool {
	return c.Find(t, name) >= 0
}

// Find returns the index of the first record of type t named name, or -1.
func (c *Container) Find(t TraitType, name string) int {
	for i, r := range c.Records {
		if r.Type() == t && r.Name == name {
			return i
		}
	}
	return -1
}

// OfType returns the records of type t in list order.
func (c *Container) OfType(t TraitType) []*Record {
	var out []*Record
	for _, r := range c.Records {
		if r.Type() == t {
			out = append(out, r)
		}
	}
	return out
}

// Types returns the trait type of every record in list order.
func (c *Container) Types() []TraitType {
	out := make([]TraitType, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Type()
	}
	return out
}

// EnsureID assigns an identifier from gen if the container has none and
// returns the identifier. An assigned identifier is never replaced.
func (c *Container) EnsureID(gen func() string) string {
	if c.ID == "" {
		c.ID = gen()
	}
	return c.ID
}

// Clone returns a deep copy of the container.
func (c *Container) Clone() *Container {
	out := *c
	if c.Menu != nil {
		m := *c.Menu
		out.Menu = &m
	}
	out.Records = make([]*Record, len(c.Records))
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	return &out
}
