// Package discovery locates git checkouts beneath a working directory for the
// batch runners.
package discovery
