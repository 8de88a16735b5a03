package hwpxfill

import (
	"fmt"
	"strings"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// Substitute injects normalized content into every indexed
// placeholder. Injected paragraphs are clones of the anchor paragraph
// so they inherit the template's styling; anchors with no payload
// entry are blanked (strict mode makes them fatal), and no literal
// marker text ever survives to the output.
func Substitute(root *hml.Node, part string, idx *Index, blocks map[string]*NormalizedBlock, strict bool, warns *Warnings) error {
	for _, ph := range idx.Placeholders {
		if !ph.Known {
			if err := blankPlaceholder(ph); err != nil {
				return NewTemplateError(part, err.Error())
			}
			continue
		}

		switch ph.Spec.Kind {
		case KindText:
			block, ok := blocks[ph.ID]
			if !ok {
				if strict {
					return NewUnknownPlaceholderError(ph.ID, part, "no payload entry in strict mode")
				}
				warns.Add(WarnUnfilledAnchor, ph.ID, "no payload entry; left blank")
				if err := blankPlaceholder(ph); err != nil {
					return NewTemplateError(part, err.Error())
				}
				continue
			}
			if err := fillTextAnchor(ph, block.Text); err != nil {
				return NewTemplateError(part, err.Error())
			}

		case KindOutline:
			block, ok := blocks[ph.ID]
			if !ok {
				if strict {
					return NewUnknownPlaceholderError(ph.ID, part, "no payload entry in strict mode")
				}
				warns.Add(WarnUnfilledAnchor, ph.ID, "no payload entry; left blank")
				if err := blankPlaceholder(ph); err != nil {
					return NewTemplateError(part, err.Error())
				}
				continue
			}
			if err := fillOutlineAnchor(ph, block.Lines); err != nil {
				return NewTemplateError(part, err.Error())
			}

		case KindSchedule:
			// The whole row group is handled once, at its first row.
			if ph.RowIndex != 0 {
				continue
			}
			rows := idx.Get(ph.ID)
			var entries []ScheduleEntry
			if block, ok := blocks[ph.ID]; ok {
				entries = block.Rows
			}
			if len(rows) != len(entries) {
				return NewRowCountMismatchError(ph.ID, len(rows), len(entries))
			}
			for i, rowPh := range rows {
				if err := fillScheduleRow(rowPh.Row, entries[i]); err != nil {
					return NewTemplateError(part, err.Error())
				}
			}
		}
	}
	return nil
}

// fillOutlineAnchor replaces the anchor paragraph with one cloned
// paragraph per outline line, then removes the anchor. An empty line
// list blanks the anchor instead, keeping the paragraph so the
// section's flow survives.
func fillOutlineAnchor(ph *Placeholder, lines []OutlineLine) error {
	if len(lines) == 0 {
		return blankPlaceholder(ph)
	}
	parent := ph.Para.Parent()
	if parent == nil {
		return fmt.Errorf("anchor %s has a detached paragraph", ph.ID)
	}
	at := parent.Index(ph.Para)
	for i, line := range lines {
		para := cloneContentParagraph(ph.Para)
		if err := setParagraphText(para, line.Render()); err != nil {
			return fmt.Errorf("anchor %s: %w", ph.ID, err)
		}
		parent.InsertChild(at+i, para)
	}
	ph.Para.Detach()
	return nil
}

// fillTextAnchor writes a flat value into the anchor paragraph. An
// inline anchor keeps the literal text around the token (section
// labels such as "○ (주관연구개발과제): ").
func fillTextAnchor(ph *Placeholder, value string) error {
	if ph.Inline {
		return replaceInlineToken(ph.Para, ph.ID, value)
	}
	ph.Para.RemoveAll("linesegarray")
	return setParagraphText(ph.Para, value)
}

// fillScheduleRow writes a task/result pair into the first and last
// cells of an expanded schedule row.
func fillScheduleRow(row *hml.Node, entry ScheduleEntry) error {
	cells := row.Elements("tc")
	if len(cells) == 0 {
		return fmt.Errorf("schedule row has no cells")
	}
	if err := setCellText(cells[0], entry.Task); err != nil {
		return err
	}
	if len(cells) > 1 {
		if err := setCellText(cells[len(cells)-1], entry.Result); err != nil {
			return err
		}
	}
	row.RemoveAll("linesegarray")
	return nil
}

// blankPlaceholder erases the marker text of an anchor that receives
// no content, leaving valid empty structure behind.
func blankPlaceholder(ph *Placeholder) error {
	if ph.Inline {
		return replaceInlineToken(ph.Para, ph.ID, "")
	}
	ph.Para.RemoveAll("linesegarray")
	return setParagraphText(ph.Para, "")
}

// cloneContentParagraph deep-copies an anchor paragraph for content
// injection, dropping runs that embed tables (작성요령 guidance boxes)
// and the layout cache so the viewer re-wraps the new text.
func cloneContentParagraph(para *hml.Node) *hml.Node {
	clone := para.Clone()
	for _, run := range clone.Elements("run") {
		if run.FindFirst("tbl") != nil {
			run.Detach()
		}
	}
	clone.RemoveAll("linesegarray")
	return clone
}

// setParagraphText sets the text of a paragraph's first text run,
// creating a run when the paragraph has none. Runs embedding tables
// are removed first so guidance boxes never leak into output.
func setParagraphText(para *hml.Node, text string) error {
	for _, run := range para.Elements("run") {
		if run.FindFirst("tbl") != nil {
			run.Detach()
		}
	}
	para.RemoveAll("linesegarray")

	assigned := false
	for _, run := range para.Elements("run") {
		for _, t := range run.Elements("t") {
			if assigned {
				t.SetText("")
				continue
			}
			t.SetText(text)
			assigned = true
		}
	}
	if assigned {
		return nil
	}
	if runs := para.Elements("run"); len(runs) > 0 {
		t := hml.NewElement(runs[0].Name.Space, "t")
		t.SetText(text)
		runs[0].AppendChild(t)
		return nil
	}

	run := hml.NewElement(para.Name.Space, "run")
	run.SetAttr("charPrIDRef", defaultCharStyle)
	t := hml.NewElement(para.Name.Space, "t")
	t.SetText(text)
	run.AppendChild(t)
	para.AppendChild(run)
	return nil
}

// defaultCharStyle matches the body character style of the NRF
// template, used only when an anchor paragraph carries no run at all.
const defaultCharStyle = "35"

// setCellText sets the text of a cell's first paragraph.
func setCellText(cell *hml.Node, text string) error {
	para := cell.FindFirst("p")
	if para == nil {
		return fmt.Errorf("table cell has no paragraph")
	}
	return setParagraphText(para, text)
}

// replaceInlineToken rewrites the {{id}} token inside a paragraph's
// run text, leaving surrounding literal text untouched. The token must
// live inside a single text run; the template ships that way.
func replaceInlineToken(para *hml.Node, id, value string) error {
	token := "{{" + id + "}}"
	for _, t := range para.FindAll("t") {
		text := t.AllText()
		if strings.Contains(text, token) {
			t.SetText(strings.Replace(text, token, value, 1))
			return nil
		}
	}
	return fmt.Errorf("anchor %s: token split across runs", id)
}

// FixYearLabels rewrites leftover N차년도/N단계 tokens in visible text
// to the actual year and stage counts.
func FixYearLabels(root *hml.Node, totalYears, stage int) {
	yearLabel := fmt.Sprintf("%d차년도", totalYears)
	stageLabel := fmt.Sprintf("%d단계", stage)
	for _, t := range root.FindAll("t") {
		text := t.AllText()
		if !strings.Contains(text, "N차년도") && !strings.Contains(text, "N단계") {
			continue
		}
		text = strings.ReplaceAll(text, "N차년도", yearLabel)
		text = strings.ReplaceAll(text, "N단계", stageLabel)
		t.SetText(text)
	}
}
