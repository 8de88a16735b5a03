package hwpxfill

import (
	"strings"
)

// OutlineLevel is the formatting level of one outline line. The
// convention defines exactly two levels; anything deeper found in
// input is flattened into the detail level.
type OutlineLevel int

const (
	LevelHeading OutlineLevel = iota
	LevelDetail
)

func (l OutlineLevel) String() string {
	if l == LevelHeading {
		return "heading"
	}
	return "detail"
}

// OutlineLine is one parsed line of an outline block: its level plus
// the marker-free text. Lines are parsed into this form once at
// ingestion and consumed as a tagged variant everywhere else.
type OutlineLine struct {
	Level OutlineLevel
	Text  string
}

// Render returns the canonical textual form injected into the
// document: heading lines as "○ …", detail lines as "   - …".
func (l OutlineLine) Render() string {
	if l.Level == LevelHeading {
		return "○ " + l.Text
	}
	return "   - " + l.Text
}

var headingMarkers = []string{"○", "◯", "〇"}
var detailMarkers = []string{"-", "–"}
var subDetailMarkers = []string{"·", "ㆍ", "•", "▪", "*"}

// Sentence-final forms accepted on detail lines (개조식 clause endings).
var detailEndings = []rune{'함', '임', '됨', '음'}

// Endings that disqualify a heading from being a noun phrase.
var headingBannedEndings = []rune{'함', '임', '됨', '음', '다', '요'}

// parseOutlineLine classifies a raw payload line by its leading
// marker. The bool result reports whether a disallowed sub-detail
// marker was flattened into the detail level.
func parseOutlineLine(raw string) (OutlineLine, bool, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, m := range headingMarkers {
		if strings.HasPrefix(trimmed, m) {
			return OutlineLine{Level: LevelHeading, Text: strings.TrimSpace(strings.TrimPrefix(trimmed, m))}, false, true
		}
	}
	for _, m := range detailMarkers {
		if strings.HasPrefix(trimmed, m) {
			return OutlineLine{Level: LevelDetail, Text: strings.TrimSpace(strings.TrimPrefix(trimmed, m))}, false, true
		}
	}
	for _, m := range subDetailMarkers {
		if strings.HasPrefix(trimmed, m) {
			return OutlineLine{Level: LevelDetail, Text: strings.TrimSpace(strings.TrimPrefix(trimmed, m))}, true, true
		}
	}
	return OutlineLine{}, false, false
}

// trimTrailingDecor strips closing punctuation so ending checks see
// the final content rune.
func trimTrailingDecor(s string) string {
	return strings.TrimRight(s, " \t.,;:!?)]}』」》〉>»\"'")
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

// endsInClauseForm reports whether the line ends in one of the four
// accepted sentence-final forms.
func endsInClauseForm(text string) bool {
	trimmed := trimTrailingDecor(text)
	if trimmed == "" {
		return false
	}
	last := lastRune(trimmed)
	for _, e := range detailEndings {
		if last == e {
			return true
		}
	}
	return false
}

// isNounPhraseEnding reports whether a heading ends like a noun phrase
// rather than a clause or sentence.
func isNounPhraseEnding(text string) bool {
	trimmed := trimTrailingDecor(text)
	if trimmed == "" {
		return false
	}
	last := lastRune(trimmed)
	for _, e := range headingBannedEndings {
		if last == e {
			return false
		}
	}
	return true
}

// FormatOptions configures outline normalization for one field.
type FormatOptions struct {
	// MinDetailLines is the recommended detail-line count per heading.
	MinDetailLines int
	// RequireDetail makes a heading with zero detail lines fatal.
	RequireDetail bool
}

// ParseOutline validates and normalizes the raw lines of one outline
// field against the two-level convention. Sub-detail markers,
// below-minimum (but non-zero) detail counts, and detail lines missing
// a sentence-final form are warnings; unmarked lines, sentence-ended
// headings, and headings without details are fatal.
func ParseOutline(field string, raw []string, opts FormatOptions, warns *Warnings) ([]OutlineLine, error) {
	var lines []OutlineLine
	var currentHeading string
	detailCount := 0

	closeHeading := func() error {
		if currentHeading == "" {
			return nil
		}
		if detailCount == 0 && opts.RequireDetail {
			return NewMalformedOutlineError(field, currentHeading, "heading has no detail lines")
		}
		if detailCount > 0 && detailCount < opts.MinDetailLines {
			warns.Add(WarnShortOutline, field, "heading %q has %d detail lines, %d recommended", currentHeading, detailCount, opts.MinDetailLines)
		}
		return nil
	}

	for _, rawLine := range raw {
		if strings.TrimSpace(rawLine) == "" {
			continue
		}
		line, flattened, ok := parseOutlineLine(rawLine)
		if !ok {
			return nil, NewMalformedOutlineError(field, rawLine, "line has no outline marker")
		}
		if flattened {
			warns.Add(WarnSubDetail, field, "sub-detail marker flattened to detail level in %q", rawLine)
		}

		switch line.Level {
		case LevelHeading:
			if err := closeHeading(); err != nil {
				return nil, err
			}
			if !isNounPhraseEnding(line.Text) {
				return nil, NewMalformedOutlineError(field, rawLine, "heading does not end in a noun phrase")
			}
			currentHeading = line.Text
			detailCount = 0
		case LevelDetail:
			if currentHeading == "" && len(lines) == 0 {
				return nil, NewMalformedOutlineError(field, rawLine, "detail line precedes any heading")
			}
			if !endsInClauseForm(line.Text) {
				warns.Add(WarnDetailEnding, field, "detail line %q does not end in an accepted sentence-final form (함/임/됨/음)", rawLine)
			}
			detailCount++
		}
		lines = append(lines, line)
	}

	if err := closeHeading(); err != nil {
		return nil, err
	}
	return lines, nil
}
