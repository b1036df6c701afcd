// Package memory provides in-process implementations of the storage ports.
// They back the "memory" index backend and the service tests.
package memory
