// Package storage publishes configuration files atomically. Every write goes
// through a temporary sibling file followed by a rename or hard link, which
// keeps concurrent invocations sharing a directory from observing or leaving
// half-written files.
package storage
