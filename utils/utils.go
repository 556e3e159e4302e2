// Package utils provides utility functions for the application.
package utils

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// NonEmpty reports whether s contains anything besides the empty string.
// The flows treat "" as the unselected sentinel.
func NonEmpty(s string) bool {
	return s != ""
}
