package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors for catalog lookups.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrScanNotFound       = errors.New("scan not found")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrUserNotFound       = errors.New("user not found")
)

// MissingTablesError reports that the catalog schema lacks required
// relations. It is distinguishable from query and connection errors so
// callers can tell "wrong database" from "unreachable database".
type MissingTablesError struct {
	Missing []string
}

// Error implements the error interface.
func (e *MissingTablesError) Error() string {
	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)
	return fmt.Sprintf("catalog is missing required tables: %s", strings.Join(missing, ", "))
}

// IsMissingTables reports whether err is a MissingTablesError.
func IsMissingTables(err error) bool {
	var mte *MissingTablesError
	return errors.As(err, &mte)
}
