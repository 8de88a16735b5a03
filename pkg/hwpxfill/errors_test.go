package hwpxfill

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"corrupt archive", NewCorruptArchiveError("a.hwpx", "bad zip", nil), IsCorruptArchiveError},
		{"unknown placeholder", NewUnknownPlaceholderError("x", "Contents/section0.xml", "not in schema"), IsUnknownPlaceholderError},
		{"malformed outline", NewMalformedOutlineError("necessity", "줄", "no marker"), IsMalformedOutlineError},
		{"row count mismatch", NewRowCountMismatchError("schedule.year1", 3, 2), IsRowCountMismatchError},
		{"io", NewIOError("read", "a.hwpx", fs.ErrNotExist), IsIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestErrorHelpersMatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", NewMalformedOutlineError("necessity", "", "no details"))
	assert.True(t, IsMalformedOutlineError(wrapped))
}

func TestIOErrorUnwrap(t *testing.T) {
	err := NewIOError("read", "a.hwpx", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWarningsCollect(t *testing.T) {
	warns := &Warnings{}
	assert.Zero(t, warns.Len())

	warns.Add(WarnUnknownAnchor, "x", "anchor not in schema")
	warns.Add(WarnShortOutline, "necessity", "%d of %d detail lines", 1, 3)

	assert.Equal(t, 2, warns.Len())
	list := warns.List()
	assert.Equal(t, WarnUnknownAnchor, list[0].Code)
	assert.Contains(t, list[1].Message, "1 of 3")
	assert.Contains(t, warns.String(), "[short-outline] necessity")
}
