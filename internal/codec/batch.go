package codec

// Pair is one name/value entry of a Batch.
type Pair struct {
	Name  string
	Value string
}

// Batch is an ordered name -> value mapping. Setting an existing name
// replaces its value and keeps the position of its first occurrence.
type Batch struct {
	names  []string
	values map[string]string
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{values: make(map[string]string)}
}

// Set adds or replaces a pair.
func (b *Batch) Set(name, value string) {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = value
}

// Len returns the number of distinct names.
func (b *Batch) Len() int {
	return len(b.names)
}

// Pairs returns the entries in iteration order.
func (b *Batch) Pairs() []Pair {
	pairs := make([]Pair, 0, len(b.names))
	for _, n := range b.names {
		pairs = append(pairs, Pair{Name: n, Value: b.values[n]})
	}
	return pairs
}
