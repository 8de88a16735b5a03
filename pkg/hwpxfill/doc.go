// Package hwpxfill fills Korean NRF research proposal templates in the
// HWPX format from a structured JSON payload. It enables automated
// proposal drafting by expanding year sections, schedule tables and
// outline blocks while preserving every formatting attribute of the
// original template.
//
// Templates carry {{identifier}} anchors in their body text. Year
// sections sit between {{section:yearN}} and {{end:yearN}} marker
// paragraphs, and schedule tables carry {{schedule.yearN}} in the
// first cell of their template row.
//
// Basic Usage:
//
//	result, err := hwpxfill.Generate(hwpxfill.GenerateOptions{
//	    TemplatePath: "proposal-template.hwpx",
//	    OutputPath:   "proposal.hwpx",
//	    DataPath:     "content.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range result.Warnings {
//	    fmt.Fprintln(os.Stderr, w)
//	}
//
// The payload maps top-level outline fields (necessity, final_goal,
// strategy, ...) to arrays of outline lines, yearly goals and contents
// to year-keyed objects, and schedules to year-keyed task/result row
// arrays. Outline lines follow the two-level convention: a heading
// starts with ○, a detail line with - and ends in a 함/임/됨/음 clause
// form.
package hwpxfill
