package resolver

import (
	"errors"
	"fmt"
	"strings"

	"source-resolver/core/descriptor"
)

// ErrSchemaMismatch is returned when a union combines tables whose schemas differ.
var ErrSchemaMismatch = errors.New("schema mismatch")

// ConflictError reports a table produced by several readers whose
// collision the conflict policy rejects.
type ConflictError struct {
	Table        string
	Strategy     descriptor.Strategy
	Contributors []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table %q is produced by %d readers [%s] and conflict strategy is '%s'",
		e.Table, len(e.Contributors), strings.Join(e.Contributors, ", "), e.Strategy)
}
