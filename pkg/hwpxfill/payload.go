package hwpxfill

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/unicode/norm"
)

// ContentKind describes what a placeholder expects.
type ContentKind int

const (
	// KindText is a flat string filled into an existing paragraph.
	KindText ContentKind = iota
	// KindOutline is an ordered sequence of heading/detail lines.
	KindOutline
	// KindSchedule is an ordered sequence of task/result row pairs.
	KindSchedule
)

func (k ContentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindOutline:
		return "outline"
	case KindSchedule:
		return "schedule"
	default:
		return "unknown"
	}
}

// ScheduleEntry is one planned activity row: what is done and what it
// produces.
type ScheduleEntry struct {
	Task   string `json:"task"`
	Result string `json:"result"`
}

// ContentBlock is the author-supplied value for one anchor before
// normalization.
type ContentBlock struct {
	Kind  ContentKind
	Text  string
	Lines []string
	Rows  []ScheduleEntry
}

// Meta carries the project-shape parameters of the payload.
type Meta struct {
	TotalYears int            `json:"total_years"`
	Stage      int            `json:"stage"`
	Months     map[string]int `json:"months,omitempty"`
}

// Validate validates the meta block.
func (m Meta) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.TotalYears, validation.Required, validation.Min(1), validation.Max(MaxYears)),
		validation.Field(&m.Stage, validation.Min(1), validation.Max(3)),
	); err != nil {
		return err
	}
	for year, months := range m.Months {
		if !yearKeyPattern.MatchString(year) {
			return fmt.Errorf("_meta.months: invalid year key %q", year)
		}
		if months < 1 || months > 12 {
			return fmt.Errorf("_meta.months.%s: month count %d out of range 1..12", year, months)
		}
	}
	return nil
}

// MaxYears caps how many project years the schema describes.
const MaxYears = 5

var yearKeyPattern = regexp.MustCompile(`^year([1-9][0-9]*)$`)

// Payload is the author-supplied content for one generation run,
// mirroring the documented JSON contract.
type Payload struct {
	Meta              Meta                       `json:"_meta"`
	Necessity         []string                   `json:"necessity"`
	FinalGoal         []string                   `json:"final_goal"`
	YearlyGoals       map[string]string          `json:"yearly_goals"`
	YearlyContents    map[string][]string        `json:"yearly_contents"`
	Schedule          map[string][]ScheduleEntry `json:"schedule"`
	Strategy          []string                   `json:"strategy"`
	System            []string                   `json:"system"`
	Utilization       []string                   `json:"utilization"`
	Effects           []string                   `json:"effects"`
	Commercialization map[string][]string        `json:"commercialization"`
}

// ParsePayload decodes and validates a JSON payload. All text is
// NFC-normalized on the way in so comparisons and injected content use
// composed Hangul regardless of how the author's tooling encoded it.
func ParsePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload JSON: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return &p, nil
}

// LoadPayload reads and parses a payload file.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	return ParsePayload(data)
}

func (p *Payload) normalize() {
	// Stage defaults to 1 when the author omits it.
	if p.Meta.Stage == 0 {
		p.Meta.Stage = 1
	}

	nfc := func(s string) string { return norm.NFC.String(s) }
	lines := func(ss []string) {
		for i := range ss {
			ss[i] = nfc(ss[i])
		}
	}

	lines(p.Necessity)
	lines(p.FinalGoal)
	lines(p.Strategy)
	lines(p.System)
	lines(p.Utilization)
	lines(p.Effects)
	for k, v := range p.YearlyGoals {
		p.YearlyGoals[k] = nfc(v)
	}
	for _, v := range p.YearlyContents {
		lines(v)
	}
	for _, v := range p.Commercialization {
		lines(v)
	}
	for _, entries := range p.Schedule {
		for i := range entries {
			entries[i].Task = nfc(entries[i].Task)
			entries[i].Result = nfc(entries[i].Result)
		}
	}
}

// Validate checks the payload against the documented contract. A
// schedule year beyond _meta.total_years with entries is rejected
// outright: silently dropping author-supplied rows would contradict
// the all-or-nothing output policy.
func (p *Payload) Validate() error {
	if err := p.Meta.Validate(); err != nil {
		return fmt.Errorf("_meta: %w", err)
	}

	for _, key := range sortedKeys(p.Schedule) {
		match := yearKeyPattern.FindStringSubmatch(key)
		if match == nil {
			return fmt.Errorf("schedule: invalid year key %q", key)
		}
		year := atoi(match[1])
		if year > p.Meta.TotalYears && len(p.Schedule[key]) > 0 {
			return fmt.Errorf("schedule.%s: %d entries supplied but _meta.total_years is %d", key, len(p.Schedule[key]), p.Meta.TotalYears)
		}
		for i, entry := range p.Schedule[key] {
			if err := validation.ValidateStruct(&entry,
				validation.Field(&entry.Task, validation.Required),
				validation.Field(&entry.Result, validation.Required),
			); err != nil {
				return fmt.Errorf("schedule.%s[%d]: %w", key, i, err)
			}
		}
	}

	for _, key := range sortedKeys(p.YearlyGoals) {
		if !yearFieldPattern.MatchString(key) {
			return fmt.Errorf("yearly_goals: invalid key %q", key)
		}
	}
	for _, key := range sortedKeys(p.YearlyContents) {
		if !yearFieldPattern.MatchString(key) {
			return fmt.Errorf("yearly_contents: invalid key %q", key)
		}
	}
	return nil
}

var yearFieldPattern = regexp.MustCompile(`^year([1-9][0-9]*)_(main|joint|contracted)$`)

// ScheduleSpec is the per-year required row count, derived from the
// literal length of each supplied schedule array for the years that
// are actually rendered.
type ScheduleSpec struct {
	TotalYears int
	Stage      int
	RowsByYear map[int]int
}

// ScheduleSpec derives the row requirements of this payload.
func (p *Payload) ScheduleSpec() ScheduleSpec {
	spec := ScheduleSpec{
		TotalYears: p.Meta.TotalYears,
		Stage:      p.Meta.Stage,
		RowsByYear: make(map[int]int),
	}
	if spec.Stage == 0 {
		spec.Stage = 1
	}
	for key, entries := range p.Schedule {
		match := yearKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		year := atoi(match[1])
		if year <= spec.TotalYears {
			spec.RowsByYear[year] = len(entries)
		}
	}
	return spec
}

// Rows returns the required row count for a year; out-of-range years
// require zero rows.
func (s ScheduleSpec) Rows(year int) int {
	if year > s.TotalYears {
		return 0
	}
	return s.RowsByYear[year]
}

// ContentMap flattens the payload into anchor-identifier keyed content
// blocks following the documented anchor naming convention.
func (p *Payload) ContentMap() map[string]ContentBlock {
	blocks := make(map[string]ContentBlock)
	outline := func(id string, lines []string) {
		if len(lines) > 0 {
			blocks[id] = ContentBlock{Kind: KindOutline, Lines: lines}
		}
	}

	outline("necessity", p.Necessity)
	outline("final_goal", p.FinalGoal)
	outline("strategy", p.Strategy)
	outline("system", p.System)
	outline("utilization", p.Utilization)
	outline("effects", p.Effects)

	for key, text := range p.YearlyGoals {
		if text != "" {
			blocks["goals."+key] = ContentBlock{Kind: KindText, Text: text}
		}
	}
	for key, lines := range p.YearlyContents {
		outline("contents."+key, lines)
	}
	for key, lines := range p.Commercialization {
		outline("commercialization."+key, lines)
	}
	for key, entries := range p.Schedule {
		if len(entries) > 0 {
			blocks["schedule."+key] = ContentBlock{Kind: KindSchedule, Rows: entries}
		}
	}
	return blocks
}

func atoi(s string) int {
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
