// Package memstore holds single-instance stand-ins for the Redis session lock and
// status mirror, used when no REDIS_URL is configured.
package memstore
