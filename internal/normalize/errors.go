// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strings"
)

// SchemaError reports that no known identifier column is present.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("unrecognized layout: no identifier column (expected one of %s)", strings.Join(quoted, ", "))
}

// MissingFieldError reports a required cell absent from a row. It aborts
// the whole conversion.
type MissingFieldError struct {
	Column string
	Line   int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("row %d: missing required column %q", e.Line, e.Column)
}
