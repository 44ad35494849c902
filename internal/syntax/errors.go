package syntax

import "fmt"

// CompileError reports a pattern fragment that could not be compiled.
type CompileError struct {
	Class   Class
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	class := e.Class
	if class == ClassSkip {
		class = "skip"
	}
	return fmt.Sprintf("compile %s pattern %q: %v", class, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
