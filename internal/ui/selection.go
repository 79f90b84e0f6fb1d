package ui

import (
	"fmt"

	"github.com/hurricanerix/blueprint/internal/analyzer"
)

// Selection is the ordered list of files staged for upload. Files are
// removed by position, not identity, and duplicates are allowed.
type Selection struct {
	files []analyzer.File
}

// Replace discards the current selection and stages files instead.
// A second drop or pick never appends to the first.
func (s *Selection) Replace(files []analyzer.File) {
	s.files = append([]analyzer.File(nil), files...)
}

// Remove drops the file at index. An index outside the selection returns
// ErrIndexOutOfRange and leaves the selection untouched.
func (s *Selection) Remove(index int) error {
	if index < 0 || index >= len(s.files) {
		return fmt.Errorf("%w: %d (have %d files)", ErrIndexOutOfRange, index, len(s.files))
	}
	s.files = append(s.files[:index:index], s.files[index+1:]...)
	return nil
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.files = nil
}

// Len returns the number of staged files.
func (s *Selection) Len() int {
	return len(s.files)
}

// Files returns a copy of the staged files in order.
func (s *Selection) Files() []analyzer.File {
	return append([]analyzer.File(nil), s.files...)
}

// Names returns the staged file names in order.
func (s *Selection) Names() []string {
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.Name
	}
	return names
}
