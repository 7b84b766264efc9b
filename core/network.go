package core

import (
	"fmt"
	"sort"
	"strings"
)

// Network is the single owner of one computation graph: a
// case-insensitive name→Node registry plus named node groups, a
// monotonic version counter driving cache invalidation, and the
// evaluation-timestamp source used for skip-recompute.
//
// The Network performs no internal locking; see doc.go for the
// concurrency contract.
type Network struct {
	nodes  map[string]Node     // lowercased name → node
	groups map[Group][]string  // group → member names (insertion order)
	member map[string]struct{} // lowercased "group\x00name" dedup set

	version   uint64 // bumped on every mutating operation
	evalStamp int64  // monotonic timestamp source
}

// NewNetwork creates an empty Network.
// Complexity: O(1)
func NewNetwork() *Network {
	return &Network{
		nodes:  make(map[string]Node),
		groups: make(map[Group][]string),
		member: make(map[string]struct{}),
	}
}

// key canonicalizes a node name for registry lookup. Names are unique
// case-insensitively; the node keeps its original spelling.
func key(name string) string { return strings.ToLower(name) }

// bump advances the version counter. Every mutating operation calls it,
// which is what keeps derived caches (orders, loop sets) honest.
func (net *Network) bump() { net.version++ }

// Version returns the current mutation counter. Derived caches snapshot
// this value and drop themselves when it changes.
func (net *Network) Version() uint64 { return net.version }

// NextEvalStamp returns a fresh, strictly increasing evaluation
// timestamp. The execution driver stamps nodes with it after compute.
func (net *Network) NextEvalStamp() int64 {
	net.evalStamp++

	return net.evalStamp
}

// ResetEvalStamps zeroes every node's evaluation timestamp, forcing the
// next ForwardProp to recompute all nodes.
func (net *Network) ResetEvalStamps() {
	for _, n := range net.nodes {
		n.SetEvalStamp(0)
	}
	net.evalStamp = 0
}

// Len returns the number of registered nodes.
func (net *Network) Len() int { return len(net.nodes) }

// AddNode registers n. It fails with ErrNilNode, ErrEmptyNodeName, or
// ErrDuplicateName (case-insensitive collision). On success the network
// version is bumped.
// Complexity: O(1)
func (net *Network) AddNode(n Node) error {
	// 1. Reject nil and unnamed nodes before touching the registry.
	if n == nil {
		return ErrNilNode
	}
	if n.Name() == "" {
		return ErrEmptyNodeName
	}
	// 2. Enforce case-insensitive uniqueness.
	k := key(n.Name())
	if _, exists := net.nodes[k]; exists {
		return fmt.Errorf("core: AddNode %q: %w", n.Name(), ErrDuplicateName)
	}
	// 3. Register and invalidate derived state.
	net.nodes[k] = n
	net.bump()

	return nil
}

// Node looks a node up by (case-insensitive) name.
func (net *Network) Node(name string) (Node, error) {
	n, ok := net.nodes[key(name)]
	if !ok {
		return nil, fmt.Errorf("core: Node %q: %w", name, ErrNodeNotFound)
	}

	return n, nil
}

// HasNode reports whether name is registered.
func (net *Network) HasNode(name string) bool {
	_, ok := net.nodes[key(name)]

	return ok
}

// Nodes returns all registered nodes sorted by canonical name, for
// deterministic full-registry iteration.
// Complexity: O(V log V)
func (net *Network) Nodes() []Node {
	keys := make([]string, 0, len(net.nodes))
	for k := range net.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Node, len(keys))
	for i, k := range keys {
		out[i] = net.nodes[k]
	}

	return out
}

// AttachInputs sets node's ordered input list. Input names need not be
// registered yet; unresolved references surface at validation or order
// construction. Bumps the network version.
func (net *Network) AttachInputs(name string, inputs ...string) error {
	n, err := net.Node(name)
	if err != nil {
		return fmt.Errorf("core: AttachInputs: %w", err)
	}
	n.SetInputs(inputs...)
	net.bump()

	return nil
}

// DeleteNode removes name from the registry and from all groups. Other
// nodes may still reference it by name; such dangling references fail
// with ErrNodeNotFound at the next validation or order construction.
func (net *Network) DeleteNode(name string) error {
	k := key(name)
	if _, ok := net.nodes[k]; !ok {
		return fmt.Errorf("core: DeleteNode %q: %w", name, ErrNodeNotFound)
	}
	delete(net.nodes, k)
	net.removeFromGroups(k)
	net.bump()

	return nil
}

// RenameNode changes a node's name, updating the registry, group
// memberships, and every other node's input references. Fails with
// ErrNodeNotFound if oldName is missing, ErrDuplicateName if newName
// collides with another registered node, or ErrRenameUnsupported if
// the node does not embed Base.
func (net *Network) RenameNode(oldName, newName string) error {
	// 1. Validate the new name.
	if newName == "" {
		return ErrEmptyNodeName
	}
	oldKey, newKey := key(oldName), key(newName)
	n, ok := net.nodes[oldKey]
	if !ok {
		return fmt.Errorf("core: RenameNode %q: %w", oldName, ErrNodeNotFound)
	}
	if oldKey != newKey {
		if _, exists := net.nodes[newKey]; exists {
			return fmt.Errorf("core: RenameNode %q -> %q: %w", oldName, newName, ErrDuplicateName)
		}
	}
	// 2. The node must expose the rename capability (Base does).
	r, ok := n.(renamer)
	if !ok {
		return fmt.Errorf("core: RenameNode %q: %w", oldName, ErrRenameUnsupported)
	}
	// 3. Re-key the registry entry and rewrite the node's own name.
	delete(net.nodes, oldKey)
	r.rename(newName)
	net.nodes[newKey] = n
	// 4. Rewrite input references across the whole registry.
	for _, other := range net.nodes {
		inputs := other.InputNames()
		changed := false
		for i, in := range inputs {
			if key(in) == oldKey {
				inputs[i] = newName
				changed = true
			}
		}
		if changed {
			other.SetInputs(inputs...)
		}
	}
	// 5. Re-key group memberships.
	net.renameInGroups(oldKey, newName)
	net.bump()

	return nil
}

// ReplaceNode swaps the node registered under name for n, keeping the
// name and group memberships. The replacement must carry the same name
// (case-insensitively). Bumps the network version.
func (net *Network) ReplaceNode(name string, n Node) error {
	if n == nil {
		return ErrNilNode
	}
	k := key(name)
	if _, ok := net.nodes[k]; !ok {
		return fmt.Errorf("core: ReplaceNode %q: %w", name, ErrNodeNotFound)
	}
	if key(n.Name()) != k {
		return fmt.Errorf("core: ReplaceNode %q: replacement is named %q: %w", name, n.Name(), ErrDuplicateName)
	}
	net.nodes[k] = n
	net.bump()

	return nil
}

// AddToGroup tags the named node as a member of group. Membership is
// idempotent and non-exclusive: a node may belong to several groups.
func (net *Network) AddToGroup(g Group, name string) error {
	k := key(name)
	if _, ok := net.nodes[k]; !ok {
		return fmt.Errorf("core: AddToGroup %q: %w", name, ErrNodeNotFound)
	}
	mk := string(g) + "\x00" + k
	if _, dup := net.member[mk]; dup {
		return nil
	}
	net.member[mk] = struct{}{}
	net.groups[g] = append(net.groups[g], name)

	return nil
}

// Group returns the member names of g in insertion order.
func (net *Network) Group(g Group) []string {
	return append([]string(nil), net.groups[g]...)
}

// NodesWithOperation returns the names of all nodes whose operation tag
// equals op, sorted for determinism.
func (net *Network) NodesWithOperation(op string) []string {
	var out []string
	for _, n := range net.Nodes() {
		if n.Operation() == op {
			out = append(out, n.Name())
		}
	}

	return out
}

// NodesMatching returns node names matching pattern. Patterns contain
// at most one '*' wildcard (prefix, suffix, or middle); a pattern
// without '*' matches exactly. Matching is case-insensitive and results
// are sorted.
func (net *Network) NodesMatching(pattern string) []string {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		if n, err := net.Node(pattern); err == nil {
			return []string{n.Name()}
		}

		return nil
	}

	head, tail := key(pattern[:star]), key(pattern[star+1:])
	var out []string
	for _, n := range net.Nodes() {
		k := key(n.Name())
		if len(k) >= len(head)+len(tail) && strings.HasPrefix(k, head) && strings.HasSuffix(k, tail) {
			out = append(out, n.Name())
		}
	}

	return out
}

// removeFromGroups drops the (lowercased) node key from every group.
func (net *Network) removeFromGroups(k string) {
	for g, members := range net.groups {
		kept := members[:0]
		for _, m := range members {
			if key(m) == k {
				delete(net.member, string(g)+"\x00"+k)
				continue
			}
			kept = append(kept, m)
		}
		net.groups[g] = kept
	}
}

// renameInGroups rewrites group membership entries for a renamed node.
func (net *Network) renameInGroups(oldKey, newName string) {
	for g, members := range net.groups {
		for i, m := range members {
			if key(m) == oldKey {
				members[i] = newName
				delete(net.member, string(g)+"\x00"+oldKey)
				net.member[string(g)+"\x00"+key(newName)] = struct{}{}
			}
		}
		net.groups[g] = members
	}
}
