package schema

import "fmt"

// UnsupportedTypeError is returned when a property type has no column mapping.
type UnsupportedTypeError struct {
	Property string
	Type     string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("unsupported property type %q", e.Type)
	}
	return fmt.Sprintf("property %q: unsupported property type %q", e.Property, e.Type)
}
