// Package redis provides a network key-value store backed by Redis.
//
// Keys are namespaced under a prefix so several workspaces can share one
// server. Entries expire after the configured TTL, which is refreshed on
// every write.
package redis
