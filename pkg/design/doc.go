// Package design provides the design tree: a recursive layout of panes and
// content widgets together with the mutation engine that keeps it consistent.
//
// # Structure
//
// A [Tree] is a flat map from node ID to [Node] plus a root pointer. Ownership
// is expressed purely through each layout's Children list; nodes carry no
// parent pointers. Moving a subtree is therefore a matter of re-linking one ID
// rather than copying nodes.
//
// There are two node variants:
//
//   - Layout nodes split their drawing area along one axis ([Vertical] or
//     [Horizontal]). Each child slot owns one [Constraint]; Children and
//     Constraints are always the same length.
//   - Widget nodes are leaves. Their content lives in a [WidgetData] value whose
//     concrete type ([ParagraphData], [ListData], [TableData], [BlockData],
//     [InputData]) determines the widget type.
//
// # Invariants
//
// Between operations a tree always satisfies:
//
//  1. The root is a layout and is never deleted or relocated.
//  2. No node is its own descendant.
//  3. Every layout has len(Children) == len(Constraints).
//  4. When every constraint of a layout is a percentage, they sum to 100.
//  5. Every child ID belongs to exactly one parent.
//
// # Mutations
//
// [Tree.Add], [Tree.Delete], [Tree.Move], [Tree.UpdateNodeProps],
// [Tree.UpdateConstraint] and [Tree.ResizeConstraint] are atomic: a request
// that would violate an invariant is rejected with one of the package's
// sentinel errors and leaves the tree untouched. Percentage shares are
// rebalanced whenever the set of siblings changes; see [Policy] for the
// tunable constants.
//
// A Tree is not safe for concurrent use. Wrap it in an [Editor] to serialize
// commands from several goroutines.
//
// # Persistence
//
// [Tree.Snapshot] returns a deep copy in the persisted {rootId, nodes} shape,
// and [Load] rebuilds a tree from one. [ReadJSON] and [WriteJSON] encode
// snapshots.
package design
