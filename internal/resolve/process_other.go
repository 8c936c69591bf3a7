//go:build !windows

package resolve

// Process returns a Resolver for modules loaded in the current process.
// Only Windows hosts are supported.
func Process() (Resolver, error) {
	return nil, ErrUnsupported
}
