package hml

import (
	"strings"
)

const xmlNamespaceURL = "http://www.w3.org/XML/1998/namespace"

// Header is the XML declaration Hancom writes on every part.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Serialize renders the tree back to its textual form, prefixed with
// the standard XML declaration. Namespace prefixes are reconstructed
// from the xmlns declarations present in the tree (HWPX parts declare
// them all on the root element), attribute order is kept as parsed and
// childless elements are written self-closing.
func Serialize(root *Node) []byte {
	var b strings.Builder
	b.WriteString(Header)
	prefixes := collectPrefixes(root)
	writeNode(&b, root, prefixes)
	return []byte(b.String())
}

// collectPrefixes maps namespace URIs back to their declared prefixes.
func collectPrefixes(root *Node) map[string]string {
	prefixes := map[string]string{
		xmlNamespaceURL: "xml",
	}
	root.Walk(func(n *Node) bool {
		for _, a := range n.Attrs {
			if a.Name.Space == "xmlns" {
				prefixes[a.Value] = a.Name.Local
			} else if a.Name.Space == "" && a.Name.Local == "xmlns" {
				prefixes[a.Value] = ""
			}
		}
		return true
	})
	return prefixes
}

func writeNode(b *strings.Builder, n *Node, prefixes map[string]string) {
	if n.IsText() {
		b.WriteString(escapeText(n.Text))
		return
	}

	name := qualifiedName(n.Name.Space, n.Name.Local, prefixes)
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(attrName(a.Name.Space, a.Name.Local, prefixes))
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	if len(n.Children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		writeNode(b, c, prefixes)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func qualifiedName(space, local string, prefixes map[string]string) string {
	if space == "" {
		return local
	}
	if prefix, ok := prefixes[space]; ok {
		if prefix == "" {
			return local
		}
		return prefix + ":" + local
	}
	// An unresolved space is a literal prefix the decoder could not map.
	if !strings.ContainsAny(space, "/:") {
		return space + ":" + local
	}
	return local
}

func attrName(space, local string, prefixes map[string]string) string {
	switch {
	case space == "xmlns":
		return "xmlns:" + local
	case space == "" && local == "xmlns":
		return "xmlns"
	case space == "xml" || space == xmlNamespaceURL:
		return "xml:" + local
	default:
		return qualifiedName(space, local, prefixes)
	}
}

// escapeText escapes character data. Tabs and newlines stay literal so
// inter-element whitespace round-trips byte-for-byte.
func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
