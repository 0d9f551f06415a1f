package workspace

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

// maxNameLength is the maximum allowed template name length.
const maxNameLength = 64

// validNamePattern matches alphanumeric, hyphen, and underscore.
var validNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateName validates a template name. Valid names contain only
// letters, numbers, hyphens, and underscores; the name doubles as the
// file name on disk.
func ValidateName(name string) error {
	if name == "" {
		return apperrors.New(apperrors.ErrCodeInvalidName,
			"template name cannot be empty", nil)
	}
	if len(name) > maxNameLength {
		return apperrors.New(apperrors.ErrCodeInvalidName,
			fmt.Sprintf("template name too long (max %d chars)", maxNameLength), nil)
	}
	if !validNamePattern.MatchString(name) {
		return apperrors.New(apperrors.ErrCodeInvalidName,
			"template name can only contain letters, numbers, hyphens, and underscores", nil)
	}
	return nil
}

// Placement positions one widget on the workspace grid. Spans of zero
// mean a single cell.
type Placement struct {
	Widget   string         `json:"widget"`
	Row      int            `json:"row"`
	Col      int            `json:"col"`
	RowSpan  int            `json:"row_span,omitempty"`
	ColSpan  int            `json:"col_span,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Template is a named workspace layout.
type Template struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Layout      []Placement `json:"layout"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the template name and layout.
func (t *Template) Validate() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	for i, p := range t.Layout {
		if strings.TrimSpace(p.Widget) == "" {
			return apperrors.New(apperrors.ErrCodeInvalidLayout,
				fmt.Sprintf("layout[%d]: widget cannot be empty", i), nil)
		}
		if p.Row < 0 || p.Col < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidLayout,
				fmt.Sprintf("layout[%d]: row and col must be non-negative", i), nil)
		}
		if p.RowSpan < 0 || p.ColSpan < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidLayout,
				fmt.Sprintf("layout[%d]: spans must be non-negative", i), nil)
		}
	}
	return nil
}

// clone returns a copy whose layout and settings do not alias the
// original. Cached templates stay immutable this way.
func (t *Template) clone() *Template {
	out := *t
	out.Layout = make([]Placement, len(t.Layout))
	copy(out.Layout, t.Layout)
	for i, p := range t.Layout {
		if p.Settings != nil {
			settings := make(map[string]any, len(p.Settings))
			for k, v := range p.Settings {
				settings[k] = v
			}
			out.Layout[i].Settings = settings
		}
	}
	return &out
}
