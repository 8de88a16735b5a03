package hwpxfill

import (
	"regexp"
	"strings"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// Anchor grammar. Anchors are whole {{identifier}} tokens in run text;
// matching is a tree walk against complete tokens, never a substring
// search over serialized XML, so body text that happens to contain an
// identifier is never touched.
var (
	anchorTokenPattern   = regexp.MustCompile(`\{\{([a-z][a-z0-9_]*(?:\.[a-z0-9_]+)*)\}\}`)
	sectionMarkerPattern = regexp.MustCompile(`^\{\{(section|end):year([1-9][0-9]*)\}\}$`)
)

// Placeholder is one indexed anchor occurrence: its identifier, the
// schema entry it resolved to and the tree nodes it spans.
type Placeholder struct {
	ID    string
	Spec  AnchorSpec
	Known bool

	// Para is the paragraph carrying the anchor token.
	Para *hml.Node
	// Inline is set when the token shares its paragraph with literal
	// text (for example a "○ (주관연구개발과제): " label); substitution
	// then replaces only the token span.
	Inline bool

	// Row and Table are set for schedule-row anchors.
	Row      *hml.Node
	Table    *hml.Node
	RowIndex int
}

// Index is the placeholder index of one body part, in document order.
type Index struct {
	Part         string
	Placeholders []*Placeholder

	byID map[string][]*Placeholder
}

// Get returns the occurrences of an identifier in document order.
func (idx *Index) Get(id string) []*Placeholder {
	return idx.byID[id]
}

// IndexPlaceholders scans a parsed body part for anchors and builds
// the typed placeholder index. In strict mode an anchor whose
// identifier is not in the schema is fatal; otherwise it is reported
// as a warning and later blanked, so the document stays openable.
func IndexPlaceholders(root *hml.Node, part string, schema *Schema, strict bool, warns *Warnings) (*Index, error) {
	idx := &Index{Part: part, byID: make(map[string][]*Placeholder)}
	rowCounters := make(map[string]int)

	// HWPX nests tables inside paragraph runs, so cell paragraphs are
	// descendants of body paragraphs; every p is collected and text
	// extraction prunes nested tables instead.
	for _, para := range root.FindAll("p") {
		text := paragraphText(para)
		trimmed := strings.TrimSpace(text)
		if sectionMarkerPattern.MatchString(trimmed) {
			continue
		}
		tokens := anchorTokenPattern.FindAllStringSubmatch(text, -1)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) > 1 {
			return nil, NewTemplateError(part, "paragraph carries more than one anchor: "+trimmed)
		}

		id := tokens[0][1]
		ph := &Placeholder{
			ID:     id,
			Para:   para,
			Inline: trimmed != tokens[0][0],
		}

		spec, known := schema.Lookup(id)
		ph.Spec = spec
		ph.Known = known
		if !known {
			if strict {
				return nil, NewUnknownPlaceholderError(id, part, "identifier not present in the schema")
			}
			warns.Add(WarnUnknownAnchor, id, "anchor not in schema; left blank in %s", part)
		}

		if known && spec.Kind == KindSchedule {
			row, table := enclosingRow(para)
			if row == nil {
				return nil, NewTemplateError(part, "schedule anchor "+id+" is not inside a table row")
			}
			ph.Row = row
			ph.Table = table
			ph.RowIndex = rowCounters[spec.ID]
			rowCounters[spec.ID]++
			// Occurrences group under the base identifier so expanded
			// ".k" rows and the bare anchor land in one bucket.
			ph.ID = spec.ID
		}

		idx.Placeholders = append(idx.Placeholders, ph)
		idx.byID[ph.ID] = append(idx.byID[ph.ID], ph)
	}

	return idx, nil
}

// paragraphText concatenates the hp:t text of one paragraph, pruning
// tables embedded in its runs so cell text never bleeds into the
// enclosing paragraph.
func paragraphText(para *hml.Node) string {
	var b strings.Builder
	var visit func(n *hml.Node)
	visit = func(n *hml.Node) {
		if n != para && !n.IsText() && n.Name.Local == "tbl" {
			return
		}
		if n.IsText() && n.Parent() != nil && n.Parent().Name.Local == "t" {
			b.WriteString(n.Text)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(para)
	return b.String()
}

// enclosingRow climbs to the nearest table row and its table.
func enclosingRow(n *hml.Node) (*hml.Node, *hml.Node) {
	var row *hml.Node
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Name.Local {
		case "tr":
			if row == nil {
				row = cur
			}
		case "tbl":
			if row != nil {
				return row, cur
			}
		}
	}
	return nil, nil
}
