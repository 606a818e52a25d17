package design

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/panecraft/pkg/observability"
)

// IDGenerator returns a fresh, unique node ID.
type IDGenerator func() string

// Tree is a design tree together with its mutation engine. The zero value is
// not usable; create trees with New or Load.
type Tree struct {
	rootID string
	nodes  map[string]*Node
	dirty  bool

	policy Policy
	newID  IDGenerator
}

// Option configures a Tree.
type Option func(*Tree)

// WithPolicy overrides the rebalancing constants. Zero fields keep their
// defaults.
func WithPolicy(p Policy) Option {
	return func(t *Tree) {
		def := DefaultPolicy()
		if p.DefaultShare > 0 {
			def.DefaultShare = p.DefaultShare
		}
		if p.MoveShareCap > 0 {
			def.MoveShareCap = p.MoveShareCap
		}
		if p.MinShare > 0 {
			def.MinShare = p.MinShare
		}
		t.policy = def
	}
}

// WithIDGenerator sets the source of new node IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(t *Tree) {
		if g != nil {
			t.newID = g
		}
	}
}

func newTree(opts []Option) *Tree {
	t := &Tree{
		nodes:  make(map[string]*Node),
		policy: DefaultPolicy(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// New returns a tree holding a single empty vertical root layout.
func New(opts ...Option) *Tree {
	t := newTree(opts)
	t.Reset()
	return t
}

// Reset replaces the content with a single empty vertical root layout and
// clears the dirty flag.
func (t *Tree) Reset() {
	id := t.newID()
	t.nodes = map[string]*Node{id: {ID: id, Type: TypeLayout, Direction: Vertical}}
	t.rootID = id
	t.dirty = false
}

// RootID returns the ID of the root layout.
func (t *Tree) RootID() string { return t.rootID }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Policy returns the rebalancing constants in use.
func (t *Tree) Policy() Policy { return t.policy }

// Dirty reports whether the tree changed since it was created, loaded or last
// marked clean.
func (t *Tree) Dirty() bool { return t.dirty }

// MarkClean clears the dirty flag, typically after a successful save.
func (t *Tree) MarkClean() { t.dirty = false }

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n.clone(), true
}

// Parent returns the ID of the layout holding id and the slot index within it.
// The root has no parent.
func (t *Tree) Parent(id string) (string, int, bool) {
	p, i := t.parentOf(id)
	if p == nil {
		return "", -1, false
	}
	return p.ID, i, true
}

func (t *Tree) parentOf(id string) (*Node, int) {
	for _, n := range t.nodes {
		if !n.IsLayout() {
			continue
		}
		if i := slices.Index(n.Children, id); i >= 0 {
			return n, i
		}
	}
	return nil, -1
}

// IsDescendant reports whether id lies in the subtree below ancestor. A node is
// not its own descendant.
func (t *Tree) IsDescendant(ancestor, id string) bool {
	n, ok := t.nodes[ancestor]
	if !ok || !n.IsLayout() {
		return false
	}
	seen := map[string]bool{ancestor: true}
	stack := slices.Clone(n.Children)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if c, ok := t.nodes[cur]; ok && c.IsLayout() {
			stack = append(stack, c.Children...)
		}
	}
	return false
}

// Walk visits every node reachable from the root in pre-order. The callback
// receives a copy of the node and its depth (0 for the root). Returning false
// skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		if !fn(*n.clone(), depth) || !n.IsLayout() {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(t.rootID, 0)
}

func (t *Tree) layout(id string) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !n.IsLayout() {
		return nil, fmt.Errorf("%w: %s", ErrNotLayout, id)
	}
	if len(n.Children) != len(n.Constraints) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptLayout, id)
	}
	return n, nil
}

func (t *Tree) observe(op string) func(*error) {
	start := time.Now()
	return func(err *error) {
		observability.Design().OnMutation(op, time.Since(start), *err)
	}
}

// Add inserts a fresh node built from tmpl as the last child of parentID and
// returns its ID. The template's ID and children are ignored. The first child
// of a layout takes 100%; otherwise existing percentage siblings shrink to make
// room for Policy.DefaultShare.
func (t *Tree) Add(parentID string, tmpl Node) (id string, err error) {
	defer t.observe("add")(&err)

	parent, err := t.layout(parentID)
	if err != nil {
		return "", err
	}
	node, err := t.fromTemplate(tmpl)
	if err != nil {
		return "", err
	}
	if percentageCount(parent.Constraints)+1 > t.policy.maxPercentagePanes() {
		return "", fmt.Errorf("%w: %s", ErrNoRoom, parentID)
	}

	var cs []Constraint
	if len(parent.Children) == 0 {
		cs = []Constraint{Percentage(100)}
	} else {
		shrunk, share := shrinkForInsert(parent.Constraints, t.policy.DefaultShare, t.policy.MinShare)
		cs = settle(append(shrunk, Percentage(share)), t.policy.MinShare)
	}

	if node.ID, err = t.freshID(); err != nil {
		return "", err
	}
	t.nodes[node.ID] = node
	parent.Children = append(parent.Children, node.ID)
	parent.Constraints = cs
	t.dirty = true
	return node.ID, nil
}

func (t *Tree) freshID() (string, error) {
	for range 8 {
		id := t.newID()
		if _, taken := t.nodes[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", ErrDuplicateID
}

func (t *Tree) fromTemplate(tmpl Node) (*Node, error) {
	switch tmpl.Type {
	case TypeLayout:
		dir := tmpl.Direction
		if dir == "" {
			dir = Vertical
		}
		if !dir.Valid() {
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidProps, dir)
		}
		return &Node{Type: TypeLayout, Direction: dir}, nil
	case TypeWidget:
		if tmpl.Data == nil {
			return nil, fmt.Errorf("%w: widget template has no data", ErrInvalidProps)
		}
		if !tmpl.Data.Styling().BorderStyle.Valid() {
			return nil, fmt.Errorf("%w: unknown border style %q", ErrInvalidProps, tmpl.Data.Styling().BorderStyle)
		}
		return &Node{Type: TypeWidget, Data: tmpl.Data.clone()}, nil
	}
	return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidProps, tmpl.Type)
}

// Delete removes a node and its whole subtree. When the removed slot held a
// positive percentage, the remaining percentage siblings are rescaled to fill
// the parent again.
func (t *Tree) Delete(id string) (err error) {
	defer t.observe("delete")(&err)

	if id == t.rootID {
		return ErrRootImmutable
	}
	if _, ok := t.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	parent, idx := t.parentOf(id)
	if parent != nil {
		if len(parent.Children) != len(parent.Constraints) {
			return fmt.Errorf("%w: %s", ErrCorruptLayout, parent.ID)
		}
		children, cs, _ := t.detach(parent, idx)
		parent.Children = children
		parent.Constraints = cs
	}
	t.removeSubtree(id)
	t.dirty = true
	return nil
}

// detach computes the children and constraints of parent with slot idx
// removed, without modifying parent. It also returns the removed constraint.
func (t *Tree) detach(parent *Node, idx int) ([]string, []Constraint, Constraint) {
	removed := parent.Constraints[idx]
	children := slices.Delete(slices.Clone(parent.Children), idx, idx+1)
	cs := slices.Delete(slices.Clone(parent.Constraints), idx, idx+1)
	if removed.IsPercentage() && removed.Value > 0 && len(cs) > 0 {
		cs = expandAfterRemoval(cs, t.policy.MinShare)
	}
	return children, settle(cs, t.policy.MinShare), removed
}

func (t *Tree) removeSubtree(id string) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	delete(t.nodes, id)
	if n.IsLayout() {
		for _, c := range n.Children {
			t.removeSubtree(c)
		}
	}
}

// Move relocates a node (with its subtree) to position index among the
// children of newParentID. The index refers to the destination's children
// after the node has been taken out of its old parent. The moved slot keeps its
// old percentage, capped at Policy.MoveShareCap.
func (t *Tree) Move(id, newParentID string, index int) (err error) {
	defer t.observe("move")(&err)

	if id == t.rootID {
		return ErrRootImmutable
	}
	if _, ok := t.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	dst, err := t.layout(newParentID)
	if err != nil {
		return err
	}
	if newParentID == id || t.IsDescendant(id, newParentID) {
		return fmt.Errorf("%w: %s into %s", ErrCycle, id, newParentID)
	}
	src, idx := t.parentOf(id)
	if src == nil {
		return fmt.Errorf("%w: %s has no parent", ErrNodeNotFound, id)
	}
	if len(src.Children) != len(src.Constraints) {
		return fmt.Errorf("%w: %s", ErrCorruptLayout, src.ID)
	}

	srcChildren, srcCS, old := t.detach(src, idx)
	dstChildren, dstCS := dst.Children, dst.Constraints
	if src == dst {
		dstChildren, dstCS = srcChildren, srcCS
	}
	if index < 0 || index > len(dstChildren) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, index, len(dstChildren))
	}
	if percentageCount(dstCS)+1 > t.policy.maxPercentagePanes() {
		return fmt.Errorf("%w: %s", ErrNoRoom, newParentID)
	}

	oldShare := t.policy.DefaultShare
	if old.IsPercentage() {
		oldShare = old.Value
	}
	var cs []Constraint
	if len(dstChildren) == 0 {
		cs = []Constraint{Percentage(100)}
	} else {
		share := max(t.policy.MinShare, min(oldShare, t.policy.MoveShareCap))
		shrunk, _ := shrinkForInsert(dstCS, share, t.policy.MinShare)
		cs = settle(slices.Insert(shrunk, index, Percentage(share)), t.policy.MinShare)
	}
	children := slices.Insert(slices.Clone(dstChildren), index, id)

	if src != dst {
		src.Children = srcChildren
		src.Constraints = srcCS
	}
	dst.Children = children
	dst.Constraints = cs
	t.dirty = true
	return nil
}

// UpdateNodeProps merges p into a node. Layouts accept only Direction; widgets
// accept the fields of their own variant. The tree is marked dirty even when
// no field applies.
func (t *Tree) UpdateNodeProps(id string, p Props) (err error) {
	defer t.observe("update_props")(&err)

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	switch {
	case n.IsLayout():
		if p.Direction != nil {
			n.Direction = *p.Direction
		}
	case n.Data != nil:
		n.Data = n.Data.apply(p)
	}
	t.dirty = true
	return nil
}

// UpdateConstraint replaces the constraint at slot index of parentID. The value
// is rounded to the nearest integer. If the layout's constraints are then all
// percentages, the neighbouring slot absorbs the difference so they still sum
// to 100.
func (t *Tree) UpdateConstraint(parentID string, index int, kind ConstraintKind, value float64) (err error) {
	defer t.observe("update_constraint")(&err)

	c := Constraint{Kind: kind, Value: roundHalfUp(value)}
	if err := c.Validate(); err != nil {
		return err
	}
	parent, err := t.layout(parentID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(parent.Constraints) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(parent.Constraints))
	}
	if c.IsPercentage() && !parent.Constraints[index].IsPercentage() &&
		percentageCount(parent.Constraints)+1 > t.policy.maxPercentagePanes() {
		return fmt.Errorf("%w: %s", ErrNoRoom, parentID)
	}

	cs := slices.Clone(parent.Constraints)
	cs[index] = c
	if allPercentage(cs) && percentageSum(cs) != 100 {
		cs = absorbEdit(cs, index, t.policy.MinShare)
	}
	if slices.Equal(cs, parent.Constraints) {
		return nil
	}
	parent.Constraints = cs
	t.dirty = true
	return nil
}

// ResizeConstraint moves delta percentage points from slot index+1 to slot
// index, keeping their combined total. Both slots must be percentages and
// neither shrinks below Policy.MinShare. A delta that rounds to zero is a
// no-op.
func (t *Tree) ResizeConstraint(parentID string, index int, delta float64) (err error) {
	defer t.observe("resize_constraint")(&err)

	parent, err := t.layout(parentID)
	if err != nil {
		return err
	}
	if index < 0 || index+1 >= len(parent.Constraints) {
		return fmt.Errorf("%w: %d has no following sibling", ErrIndexOutOfRange, index)
	}
	a, b := parent.Constraints[index], parent.Constraints[index+1]
	if !a.IsPercentage() || !b.IsPercentage() {
		return fmt.Errorf("%w: slots %d and %d", ErrNotPercentage, index, index+1)
	}
	d := roundHalfUp(delta)
	if d == 0 {
		return nil
	}
	total := a.Value + b.Value
	floor := t.policy.MinShare
	if total < 2*floor {
		return fmt.Errorf("%w: slots %d and %d hold only %d%%", ErrNoRoom, index, index+1, total)
	}
	newA := max(floor, min(total-floor, a.Value+d))
	if newA == a.Value {
		return nil
	}
	parent.Constraints[index].Value = newA
	parent.Constraints[index+1].Value = total - newA
	t.dirty = true
	return nil
}
