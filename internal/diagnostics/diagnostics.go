// Package diagnostics carries problems from the parsing front end. These
// are distinct from the core's InferenceError: a diagnostic here means
// the AST could not be built at all, so the input never reaches the core.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/flowtype/internal/token"
)

// Diagnostic is one parse-time problem.
type Diagnostic struct {
	Message string
	Pos     token.Position
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// New builds a Diagnostic at the given token's position.
func New(tok token.Token, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(format, args...), Pos: tok.Start}
}
