// Package lfsaudit verifies that every large file object referenced anywhere
// in a repository's history is still present on at least one remote, and
// reports the commits that reference objects no remote can confirm.
package lfsaudit
