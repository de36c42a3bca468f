package ledger

import "sync"

// flattenThreshold bounds how long a parent-pointer delta chain is
// allowed to grow before an operation eagerly flattens it (spec §4.5,
// §9: "a parent-pointer delta chain with an auto-flatten threshold").
const flattenThreshold = 64

// UnspentSet is an ordered id -> Output index with copy-on-fork
// semantics (spec §3, §4.5). Every value is immutable: Add/Remove
// return a new UnspentSet and never touch the one they were called
// on, regardless of whether the implementation shares structure with
// it internally. Internally a set is a node in a parent-pointer delta
// chain; the chain is flattened lazily (the first query that needs a
// full view, memoized) or eagerly once it grows past
// flattenThreshold.
type UnspentSet struct {
	node *unspentNode
}

type unspentNode struct {
	parent     *unspentNode
	addedOrder []OutputId
	added      map[OutputId]Output
	removed    map[OutputId]struct{}
	total      Amount
	depth      int

	flatOnce  sync.Once
	flatMap   map[OutputId]Output
	flatOrder []OutputId
}

// NewUnspentSet returns an empty set.
func NewUnspentSet() UnspentSet {
	return UnspentSet{node: &unspentNode{
		added:   map[OutputId]Output{},
		removed: map[OutputId]struct{}{},
	}}
}

func (s UnspentSet) child(added map[OutputId]Output, addedOrder []OutputId, removed map[OutputId]struct{}, total Amount) UnspentSet {
	n := &unspentNode{
		parent:     s.node,
		addedOrder: addedOrder,
		added:      added,
		removed:    removed,
		total:      total,
		depth:      s.node.depth + 1,
	}
	if n.depth > flattenThreshold {
		return UnspentSet{node: flattenedNode(n)}
	}
	return UnspentSet{node: n}
}

// Add returns a set with o inserted. Callers (i.e. the Ledger) are
// responsible for rejecting a collision before calling Add; Add
// itself always (re)binds the id, matching the teacher's UTXOSet.Update
// which unconditionally writes new entries.
func (s UnspentSet) Add(o Output) UnspentSet {
	return s.AddAll([]Output{o})
}

// AddAll returns a set with every output in os inserted, atomically
// with respect to the total-amount cache.
func (s UnspentSet) AddAll(os []Output) UnspentSet {
	if len(os) == 0 {
		return s
	}
	added := make(map[OutputId]Output, len(os))
	order := make([]OutputId, 0, len(os))
	total := s.TotalAmount()
	for _, o := range os {
		if prev, ok := added[o.ID]; ok {
			total -= prev.Amount
		} else {
			if prev, ok := s.Get(o.ID); ok {
				total -= prev.Amount
			}
			order = append(order, o.ID)
		}
		added[o.ID] = o
		total += o.Amount
	}
	return s.child(added, order, map[OutputId]struct{}{}, total)
}

// Remove returns a set with id no longer bound. A no-op (but still a
// fresh logical state, per the snapshot contract) if id is absent.
func (s UnspentSet) Remove(id OutputId) UnspentSet {
	return s.RemoveAll([]OutputId{id})
}

// RemoveAll returns a set with every id in ids no longer bound;
// unknown ids are silently skipped.
func (s UnspentSet) RemoveAll(ids []OutputId) UnspentSet {
	if len(ids) == 0 {
		return s
	}
	removed := map[OutputId]struct{}{}
	total := s.TotalAmount()
	for _, id := range ids {
		if _, dup := removed[id]; dup {
			continue
		}
		if o, ok := s.Get(id); ok {
			removed[id] = struct{}{}
			total -= o.Amount
		}
	}
	if len(removed) == 0 {
		return s
	}
	return s.child(map[OutputId]Output{}, nil, removed, total)
}

// Get looks up id by walking the delta chain from leaf to root; the
// first node that mentions id (whether adding or removing it) decides
// the answer.
func (s UnspentSet) Get(id OutputId) (Output, bool) {
	for n := s.node; n != nil; n = n.parent {
		if o, ok := n.added[id]; ok {
			return o, true
		}
		if _, ok := n.removed[id]; ok {
			return Output{}, false
		}
	}
	return Output{}, false
}

// Contains reports whether id is currently unspent.
func (s UnspentSet) Contains(id OutputId) bool {
	_, ok := s.Get(id)
	return ok
}

// Count returns the number of unspent outputs.
func (s UnspentSet) Count() int {
	_, order := s.flatten()
	return len(order)
}

// TotalAmount returns the cached sum of every unspent output's
// amount, O(1).
func (s UnspentSet) TotalAmount() Amount {
	return s.node.total
}

// OutputIds returns every unspent id, in insertion order.
func (s UnspentSet) OutputIds() []OutputId {
	_, order := s.flatten()
	return append([]OutputId(nil), order...)
}

// Filter returns every unspent output for which pred returns true, in
// insertion order.
func (s UnspentSet) Filter(pred func(Output) bool) []Output {
	m, order := s.flatten()
	var out []Output
	for _, id := range order {
		if o := m[id]; pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// OwnedBy returns every unspent output locked with a NamedOwner lock
// matching name, in insertion order.
func (s UnspentSet) OwnedBy(name string) []Output {
	return s.Filter(func(o Output) bool {
		owner, ok := OwnerNameOf(o.Lock)
		return ok && owner == name
	})
}

// TotalAmountOwnedBy sums the amounts of every output owned by name.
func (s UnspentSet) TotalAmountOwnedBy(name string) Amount {
	var total Amount
	for _, o := range s.OwnedBy(name) {
		total += o.Amount
	}
	return total
}

// Iterate calls fn for every unspent output in insertion order,
// stopping early if fn returns false.
func (s UnspentSet) Iterate(fn func(Output) bool) {
	m, order := s.flatten()
	for _, id := range order {
		if !fn(m[id]) {
			return
		}
	}
}

// Release eagerly flattens the delta chain, collapsing any structural
// sharing with ancestor snapshots into an independent root node. It
// never changes what the set observably contains.
func (s UnspentSet) Release() UnspentSet {
	return UnspentSet{node: flattenedNode(s.node)}
}

func (s UnspentSet) flatten() (map[OutputId]Output, []OutputId) {
	s.node.flatOnce.Do(func() {
		s.node.flatMap, s.node.flatOrder = computeFlat(s.node)
	})
	return s.node.flatMap, s.node.flatOrder
}

func flattenedNode(n *unspentNode) *unspentNode {
	m, order := computeFlat(n)
	flat := &unspentNode{
		added:      m,
		addedOrder: order,
		removed:    map[OutputId]struct{}{},
		total:      n.total,
		depth:      0,
	}
	flat.flatMap, flat.flatOrder = m, order
	return flat
}

// computeFlat walks the chain once from root to leaf, building the
// full id -> Output view. It never mutates n or any ancestor.
func computeFlat(n *unspentNode) (map[OutputId]Output, []OutputId) {
	if n.parent == nil {
		m := make(map[OutputId]Output, len(n.addedOrder))
		order := make([]OutputId, 0, len(n.addedOrder))
		for _, id := range n.addedOrder {
			if _, gone := n.removed[id]; gone {
				continue
			}
			if o, ok := n.added[id]; ok {
				m[id] = o
				order = append(order, id)
			}
		}
		return m, order
	}

	parentMap, parentOrder := n.parent.flatMap, n.parent.flatOrder
	if parentMap == nil {
		parentMap, parentOrder = computeFlat(n.parent)
	}

	m := make(map[OutputId]Output, len(parentMap)+len(n.addedOrder))
	order := make([]OutputId, 0, len(parentOrder)+len(n.addedOrder))
	for _, id := range parentOrder {
		if _, removedHere := n.removed[id]; removedHere {
			continue
		}
		if _, addedHere := n.added[id]; addedHere {
			continue
		}
		m[id] = parentMap[id]
		order = append(order, id)
	}
	for _, id := range n.addedOrder {
		m[id] = n.added[id]
		order = append(order, id)
	}
	return m, order
}
