// Package example is the template's placeholder payload. Replace it with
// real packages after cloning.
package example

// AddOne returns n incremented by one.
func AddOne(n int) int {
	return n + 1
}
