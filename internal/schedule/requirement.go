package schedule

import "fmt"

// Channel describes how a missing piece of information is collected from
// the user.
type Channel string

const (
	// ChannelChat means the field can be extracted from free-form chat input.
	ChannelChat Channel = "chat"

	// ChannelForm means the field is collected through a structured UI
	// element (e.g. a timezone picker) rather than conversation.
	ChannelForm Channel = "form"
)

// NodeKind discriminates the requirement tree variants.
type NodeKind int

const (
	// KindLeaf is a single atomic requirement identified by a field key.
	KindLeaf NodeKind = iota

	// KindOneOf is satisfied when at least one child is satisfied.
	KindOneOf

	// KindAnd is satisfied only when all children are satisfied.
	KindAnd
)

// Node is one node in a declarative requirement tree. The tree is a closed
// tagged union: a node is either a leaf (Key/Channel/Prompt set) or a
// composite (Children set). Trees are built once at startup and never
// mutated afterwards.
type Node struct {
	Kind     NodeKind
	Key      string
	Channel  Channel
	Prompt   string
	Children []*Node
}

// Leaf creates a chat-extractable leaf requirement.
func Leaf(key, prompt string) *Node {
	return &Node{Kind: KindLeaf, Key: key, Channel: ChannelChat, Prompt: prompt}
}

// FormLeaf creates a leaf requirement collected through a UI form element.
func FormLeaf(key, prompt string) *Node {
	return &Node{Kind: KindLeaf, Key: key, Channel: ChannelForm, Prompt: prompt}
}

// OneOf creates a composite satisfied by any one of its children.
func OneOf(children ...*Node) *Node {
	if len(children) == 0 {
		panic("schedule: OneOf requires at least one child")
	}
	return &Node{Kind: KindOneOf, Children: children}
}

// And creates a composite satisfied only when all children are satisfied.
func And(children ...*Node) *Node {
	if len(children) == 0 {
		panic("schedule: And requires at least one child")
	}
	return &Node{Kind: KindAnd, Children: children}
}

// firstLeaf returns the left-most leaf under n. Used to pick a
// representative leaf when an entire OneOf subtree is unmet.
func (n *Node) firstLeaf() *Node {
	if n.Kind == KindLeaf {
		return n
	}
	if len(n.Children) == 0 {
		panic(fmt.Sprintf("schedule: composite requirement node without children (kind %d)", n.Kind))
	}
	return n.Children[0].firstLeaf()
}

// Spec is the full requirement specification for one skill. Temporal
// requirements are kept separate because the Temporal Resolver owns their
// defaulting rules.
type Spec struct {
	Required         []*Node
	Optional         []*Node
	TemporalRequired []*Node
	TemporalOptional []*Node
}

// Evaluate walks the given requirement nodes against a draft and returns
// every currently unmet leaf, depth-first and left-to-right. It does not
// short-circuit across siblings: the caller sees all known gaps in one
// pass and decides how many to surface to the user.
//
// Evaluate is a pure function of (nodes, draft).
func Evaluate(nodes []*Node, d *Draft) []*Node {
	var unmet []*Node
	for _, n := range nodes {
		unmet = append(unmet, evaluateNode(n, d)...)
	}
	return unmet
}

// Satisfied reports whether every node in the list is currently met.
func Satisfied(nodes []*Node, d *Draft) bool {
	return len(Evaluate(nodes, d)) == 0
}

func evaluateNode(n *Node, d *Draft) []*Node {
	switch n.Kind {
	case KindLeaf:
		if d.has(n.Key) {
			return nil
		}
		return []*Node{n}

	case KindOneOf:
		if len(n.Children) == 0 {
			panic("schedule: OneOf node without children")
		}
		for _, c := range n.Children {
			if len(evaluateNode(c, d)) == 0 {
				return nil
			}
		}
		// All alternatives unmet: report the first child's leaf as
		// representative rather than flooding the user with every option.
		return []*Node{n.Children[0].firstLeaf()}

	case KindAnd:
		if len(n.Children) == 0 {
			panic("schedule: And node without children")
		}
		var unmet []*Node
		for _, c := range n.Children {
			unmet = append(unmet, evaluateNode(c, d)...)
		}
		return unmet

	default:
		panic(fmt.Sprintf("schedule: unknown requirement node kind %d", n.Kind))
	}
}
