package hml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Parse reads one XML part into a Node tree. Comments, processing
// instructions and directives are dropped; element order, character
// data (including inter-element whitespace) and every attribute are
// preserved.
func Parse(data []byte) (*Node, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader is Parse for a stream.
func ParseReader(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse part: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name}
			if len(t.Attr) > 0 {
				node.Attrs = make([]xml.Attr, len(t.Attr))
				copy(node.Attrs, t.Attr)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse part: multiple root elements")
				}
				root = node
			} else {
				stack[len(stack)-1].AppendChild(node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("failed to parse part: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(NewText(string(t)))
			}
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("failed to parse part: unexpected end of input")
	}
	if root == nil {
		return nil, fmt.Errorf("failed to parse part: no root element")
	}
	return root, nil
}
