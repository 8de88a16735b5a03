package hml

import (
	"encoding/xml"
	"strings"
)

// Node is one node of a parsed XML part. Element nodes have a Name and
// may carry attributes and children; text nodes have an empty Name and
// their character data in Text.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []*Node

	parent *Node
}

// NewElement creates a detached element node with the given namespace
// URI and local name.
func NewElement(space, local string) *Node {
	return &Node{Name: xml.Name{Space: space, Local: local}}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Text: text}
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool {
	return n.Name.Local == ""
}

// Parent returns the node's parent, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Index returns the position of child among n's children, or -1 if
// child is not a direct child of n.
func (n *Node) Index(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// InsertChild inserts child at position i among n's children. An index
// at or beyond the current length appends.
func (n *Node) InsertChild(i int, child *Node) {
	if i < 0 {
		i = 0
	}
	if i >= len(n.Children) {
		n.AppendChild(child)
		return
	}
	child.parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// RemoveChild detaches child from n. It is a no-op when child is not a
// direct child of n.
func (n *Node) RemoveChild(child *Node) {
	i := n.Index(child)
	if i < 0 {
		return
	}
	child.parent = nil
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Clone returns a deep copy of n. Every node in the copy is freshly
// allocated, so mutating the clone can never reach back into the
// original tree. The clone is detached (nil parent).
func (n *Node) Clone() *Node {
	c := &Node{
		Name: n.Name,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]xml.Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	for _, child := range n.Children {
		c.AppendChild(child.Clone())
	}
	return c
}

// Elements returns the direct element children with the given local
// name, ignoring namespaces.
func (n *Node) Elements(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() && c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first direct element child with the given local
// name, or nil.
func (n *Node) First(local string) *Node {
	for _, c := range n.Children {
		if !c.IsText() && c.Name.Local == local {
			return c
		}
	}
	return nil
}

// FindAll returns all descendant elements (including n itself) with
// the given local name, in document order.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if !d.IsText() && d.Name.Local == local {
			out = append(out, d)
		}
		return true
	})
	return out
}

// FindFirst returns the first descendant element with the given local
// name in document order, or nil.
func (n *Node) FindFirst(local string) *Node {
	var found *Node
	n.Walk(func(d *Node) bool {
		if found == nil && !d.IsText() && d.Name.Local == local {
			found = d
			return false
		}
		return found == nil
	})
	return found
}

// Walk visits n and every descendant in document order. Returning
// false from fn stops descent into the current node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// RemoveAll detaches every descendant element with the given local
// name and returns how many were removed.
func (n *Node) RemoveAll(local string) int {
	removed := 0
	for _, v := range n.FindAll(local) {
		if v == n {
			continue
		}
		v.Detach()
		removed++
	}
	return removed
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets the attribute with the given local name, preserving its
// position when it already exists.
func (n *Node) SetAttr(local, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == local {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// AllText returns the concatenated character data of every text node
// under n, in document order.
func (n *Node) AllText() string {
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.IsText() {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// SetText replaces n's children with a single text node. Intended for
// leaf text carriers such as hp:t.
func (n *Node) SetText(text string) {
	for _, c := range n.Children {
		c.parent = nil
	}
	n.Children = n.Children[:0]
	if text != "" {
		n.AppendChild(NewText(text))
	}
}
