package symtab

import (
	"errors"
	"fmt"
)

// MissingSymbolError indicates that a required symbol was not found after
// scanning the whole table.
type MissingSymbolError struct {
	Name string
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("symbol %q not found in symbol table", e.Name)
}

// IsMissingSymbol reports whether err is, or wraps, a MissingSymbolError.
func IsMissingSymbol(err error) bool {
	var target *MissingSymbolError
	return errors.As(err, &target)
}
