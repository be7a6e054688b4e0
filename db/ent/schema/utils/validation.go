// Package utils holds small helpers shared by the ent schema definitions.
package utils

import "fmt"

// EnumValidator restricts a string column to a fixed value set, for fields
// like run status and risk level that mirror the constants enums.
func EnumValidator(allowed ...string) func(string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; ok {
			return nil
		}
		return fmt.Errorf("value %q is not in the allowed set", s)
	}
}
