// Package history runs read-only git queries across every discovered checkout.
//
// It provides the yesterday, last-week, range, gone, and exec commands, all
// sharing a Service that enumerates repositories and prints non-empty results
// under per-repository banners. Any git failure aborts the whole batch.
package history
