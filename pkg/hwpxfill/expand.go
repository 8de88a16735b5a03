package hwpxfill

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// PruneYearSections removes per-year template regions that must not be
// rendered. Regions are delimited by {{section:yearN}} / {{end:yearN}}
// marker paragraphs sharing one parent. For years beyond totalYears
// the whole region is removed, tables included; otherwise only the two
// marker paragraphs are stripped. Either way no marker text survives
// to the output.
func PruneYearSections(root *hml.Node, part string, totalYears int) error {
	type marker struct {
		node *hml.Node
		kind string
		year int
	}
	markersByYear := make(map[int][]marker)
	var years []int

	for _, para := range root.FindAll("p") {
		trimmed := strings.TrimSpace(paragraphText(para))
		match := sectionMarkerPattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		year, _ := strconv.Atoi(match[2])
		if _, seen := markersByYear[year]; !seen {
			years = append(years, year)
		}
		markersByYear[year] = append(markersByYear[year], marker{node: para, kind: match[1], year: year})
	}
	sort.Ints(years)

	for _, year := range years {
		markers := markersByYear[year]
		if len(markers)%2 != 0 {
			return NewTemplateError(part, fmt.Sprintf("unbalanced section markers for year%d", year))
		}
		for i := 0; i < len(markers); i += 2 {
			start, end := markers[i], markers[i+1]
			if start.kind != "section" || end.kind != "end" {
				return NewTemplateError(part, fmt.Sprintf("section markers for year%d out of order", year))
			}
			parent := start.node.Parent()
			if parent == nil || parent != end.node.Parent() {
				return NewTemplateError(part, fmt.Sprintf("section markers for year%d do not share a parent", year))
			}

			from := parent.Index(start.node)
			to := parent.Index(end.node)
			if from < 0 || to < from {
				return NewTemplateError(part, fmt.Sprintf("section markers for year%d out of order", year))
			}

			if year > totalYears {
				victims := append([]*hml.Node(nil), parent.Children[from:to+1]...)
				for _, victim := range victims {
					victim.Detach()
				}
			} else {
				start.node.Detach()
				end.node.Detach()
			}
		}
	}
	return nil
}

// scheduleTable is one schedule table found in a part: its per-year
// anchor rows in document order.
type scheduleTable struct {
	baseID string
	year   int
	table  *hml.Node
	rows   []*hml.Node
}

// findScheduleTables locates every table holding schedule anchor rows.
func findScheduleTables(root *hml.Node, schema *Schema) []*scheduleTable {
	var order []string
	grouped := make(map[string]*scheduleTable)

	for _, row := range root.FindAll("tr") {
		cells := row.Elements("tc")
		if len(cells) == 0 {
			continue
		}
		trimmed := strings.TrimSpace(cellText(cells[0]))
		match := anchorTokenPattern.FindStringSubmatch(trimmed)
		if match == nil || trimmed != match[0] {
			continue
		}
		spec, known := schema.Lookup(match[1])
		if !known || spec.Kind != KindSchedule {
			continue
		}
		yearMatch := yearKeyPattern.FindStringSubmatch(strings.TrimPrefix(spec.ID, "schedule."))
		if yearMatch == nil {
			continue
		}

		if _, seen := grouped[spec.ID]; !seen {
			order = append(order, spec.ID)
			_, table := enclosingRow(cells[0])
			if table == nil {
				table = row.Parent()
			}
			grouped[spec.ID] = &scheduleTable{
				baseID: spec.ID,
				year:   atoi(yearMatch[1]),
				table:  table,
			}
		}
		grouped[spec.ID].rows = append(grouped[spec.ID].rows, row)
	}

	tables := make([]*scheduleTable, 0, len(order))
	for _, id := range order {
		tables = append(tables, grouped[id])
	}
	return tables
}

// ExpandSchedules reshapes every schedule table to the required row
// count before final indexing. Cloned rows are structurally
// independent copies of the last template row with text cleared,
// layout caches stripped and a fresh index-suffixed anchor; excess
// pre-expanded rows are deleted from the end. Tables for years beyond
// the rendered range are removed entirely.
func ExpandSchedules(root *hml.Node, part string, spec ScheduleSpec, schema *Schema, warns *Warnings) error {
	for _, st := range findScheduleTables(root, schema) {
		required := spec.Rows(st.year)

		if st.year > spec.TotalYears {
			// Normally the year's section markers already removed this
			// table; a markerless template still must not leak it.
			removeScheduleTable(st.table)
			continue
		}

		template := len(st.rows)
		switch {
		case required > template:
			last := st.rows[len(st.rows)-1]
			for i := template; i < required; i++ {
				clone := cloneScheduleRow(last)
				anchor := fmt.Sprintf("{{%s.%d}}", st.baseID, i+1)
				if err := setCellText(clone.Elements("tc")[0], anchor); err != nil {
					return NewTemplateError(part, fmt.Sprintf("cannot relabel cloned row of %s: %v", st.baseID, err))
				}
				parent := last.Parent()
				parent.InsertChild(parent.Index(last)+1, clone)
				last = clone
				st.rows = append(st.rows, clone)
			}
		case required < template:
			// Contraction policy: delete from the end, mirroring how
			// pre-expansion appended there.
			for _, victim := range st.rows[required:] {
				victim.Detach()
			}
			st.rows = st.rows[:required]
			if required == 0 {
				warns.Add(WarnEmptySchedule, st.baseID, "year%d has no schedule entries; table keeps only its header rows", st.year)
			}
		}

		if required != template {
			renumberRowAddrs(st.table)
			recalcTableHeights(st.table)
		}
	}
	return nil
}

// cloneScheduleRow deep-copies a template row, clears its text and
// drops layout caches so the viewer re-wraps the new content. Every
// formatting attribute of the source row is carried by the clone.
func cloneScheduleRow(row *hml.Node) *hml.Node {
	clone := row.Clone()
	for _, t := range clone.FindAll("t") {
		t.SetText("")
	}
	clone.RemoveAll("linesegarray")
	return clone
}

// removeScheduleTable detaches a schedule table, along with its
// enclosing paragraph when nothing but the table lived there.
func removeScheduleTable(table *hml.Node) {
	wrapper := table
	for cur := table.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Name.Local != "run" && cur.Name.Local != "p" {
			break
		}
		if strings.TrimSpace(paragraphText(cur)) != "" {
			break
		}
		wrapper = cur
	}
	wrapper.Detach()
}

// renumberRowAddrs rewrites cellAddr@rowAddr to each cell's actual row
// index and refreshes the table's rowCnt.
func renumberRowAddrs(table *hml.Node) {
	rows := table.Elements("tr")
	for rowIdx, row := range rows {
		for _, cell := range row.Elements("tc") {
			if addr := cell.First("cellAddr"); addr != nil {
				addr.SetAttr("rowAddr", strconv.Itoa(rowIdx))
			}
		}
	}
	if _, ok := table.Attr("rowCnt"); ok {
		table.SetAttr("rowCnt", strconv.Itoa(len(rows)))
	}
}

// recalcTableHeights recomputes the table's sz@height from its rows'
// cell heights and propagates the delta to the nearest enclosing
// table, the way the hand-tuned template keeps inner and outer wrapper
// tables in agreement.
func recalcTableHeights(table *hml.Node) {
	total := 0
	for _, row := range table.Elements("tr") {
		cells := row.Elements("tc")
		if len(cells) == 0 {
			continue
		}
		if csz := cells[0].First("cellSz"); csz != nil {
			if h, ok := csz.Attr("height"); ok {
				total += atoi(h)
			}
		}
	}

	sz := table.First("sz")
	if sz == nil {
		return
	}
	oldHeight := 0
	if h, ok := sz.Attr("height"); ok {
		oldHeight = atoi(h)
	}
	sz.SetAttr("height", strconv.Itoa(total))

	delta := total - oldHeight
	if delta == 0 {
		return
	}
	for cur := table.Parent(); cur != nil; cur = cur.Parent() {
		if cur.IsText() || cur.Name.Local != "tbl" {
			continue
		}
		if outerSz := cur.First("sz"); outerSz != nil {
			if h, ok := outerSz.Attr("height"); ok {
				outerSz.SetAttr("height", strconv.Itoa(atoi(h)+delta))
			}
		}
		break
	}
}

// cellText concatenates the visible text of one table cell, pruning
// any table nested inside it.
func cellText(cell *hml.Node) string {
	return paragraphText(cell)
}
