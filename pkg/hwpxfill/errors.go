package hwpxfill

import (
	"errors"
	"fmt"
	"strings"
)

// CorruptArchiveError reports a template package that could not be
// read: not a zip archive, or missing a required member.
type CorruptArchiveError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CorruptArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt archive %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrupt archive %q: %s", e.Path, e.Message)
}

func (e *CorruptArchiveError) Unwrap() error {
	return e.Cause
}

// NewCorruptArchiveError creates a new corrupt archive error.
func NewCorruptArchiveError(path, message string, cause error) error {
	return &CorruptArchiveError{Path: path, Message: message, Cause: cause}
}

// UnknownPlaceholderError reports an anchor whose identifier is not in
// the schema, or (in strict mode) an indexed anchor left without a
// payload entry.
type UnknownPlaceholderError struct {
	ID      string
	Part    string
	Message string
}

func (e *UnknownPlaceholderError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("placeholder %q in %s: %s", e.ID, e.Part, e.Message)
	}
	return fmt.Sprintf("placeholder %q: %s", e.ID, e.Message)
}

// NewUnknownPlaceholderError creates a new unknown placeholder error.
func NewUnknownPlaceholderError(id, part, message string) error {
	return &UnknownPlaceholderError{ID: id, Part: part, Message: message}
}

// MalformedOutlineError reports an outline block violating the
// two-level heading/detail convention for a required field.
type MalformedOutlineError struct {
	Field  string
	Line   string
	Reason string
}

func (e *MalformedOutlineError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("malformed outline in %q at line %q: %s", e.Field, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed outline in %q: %s", e.Field, e.Reason)
}

// NewMalformedOutlineError creates a new malformed outline error.
func NewMalformedOutlineError(field, line, reason string) error {
	return &MalformedOutlineError{Field: field, Line: line, Reason: reason}
}

// RowCountMismatchError reports disagreement between an expanded
// schedule table and its payload entries. Expansion derives the row
// count from the same payload, so this is an internal invariant
// violation and always fatal.
type RowCountMismatchError struct {
	Table   string
	Rows    int
	Entries int
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("row count mismatch in %s: table has %d rows, payload has %d entries", e.Table, e.Rows, e.Entries)
}

// NewRowCountMismatchError creates a new row count mismatch error.
func NewRowCountMismatchError(table string, rows, entries int) error {
	return &RowCountMismatchError{Table: table, Rows: rows, Entries: entries}
}

// IOError reports a filesystem failure on read or write.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s of %q: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIOError creates a new I/O error.
func NewIOError(op, path string, cause error) error {
	return &IOError{Op: op, Path: path, Cause: cause}
}

// TemplateError reports a structural problem inside an otherwise
// readable template part, such as unbalanced section markers.
type TemplateError struct {
	Part    string
	Message string
}

func (e *TemplateError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("template error in %s: %s", e.Part, e.Message)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

// NewTemplateError creates a new template error.
func NewTemplateError(part, message string) error {
	return &TemplateError{Part: part, Message: message}
}

// IsCorruptArchiveError checks if an error is a corrupt archive error.
func IsCorruptArchiveError(err error) bool {
	var target *CorruptArchiveError
	return errors.As(err, &target)
}

// IsUnknownPlaceholderError checks if an error is an unknown placeholder error.
func IsUnknownPlaceholderError(err error) bool {
	var target *UnknownPlaceholderError
	return errors.As(err, &target)
}

// IsMalformedOutlineError checks if an error is a malformed outline error.
func IsMalformedOutlineError(err error) bool {
	var target *MalformedOutlineError
	return errors.As(err, &target)
}

// IsRowCountMismatchError checks if an error is a row count mismatch error.
func IsRowCountMismatchError(err error) bool {
	var target *RowCountMismatchError
	return errors.As(err, &target)
}

// IsIOError checks if an error is an I/O error.
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}

// Warning codes surfaced alongside a successful run.
const (
	WarnUnknownAnchor  = "unknown-anchor"
	WarnUnfilledAnchor = "unfilled-anchor"
	WarnShortOutline   = "short-outline"
	WarnDetailEnding   = "detail-ending"
	WarnSubDetail      = "sub-detail"
	WarnEmptySchedule  = "empty-schedule"
	WarnSkippedBlock   = "skipped-block"
)

// Warning is a non-fatal finding collected during a run.
type Warning struct {
	Code    string
	Field   string
	Message string
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Field, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// Warnings collects the warnings of one generation run.
type Warnings struct {
	list []Warning
}

// Add records a warning.
func (w *Warnings) Add(code, field, format string, args ...interface{}) {
	w.list = append(w.list, Warning{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Len returns the number of collected warnings.
func (w *Warnings) Len() int {
	return len(w.list)
}

// List returns the collected warnings in the order they were added.
func (w *Warnings) List() []Warning {
	out := make([]Warning, len(w.list))
	copy(out, w.list)
	return out
}

func (w *Warnings) String() string {
	var parts []string
	for _, warning := range w.list {
		parts = append(parts, warning.String())
	}
	return strings.Join(parts, "\n")
}
