// Package nodeid derives a stable device identifier from the Raspberry Pi
// hardware serial and records it in the persistent user overlay.
package nodeid
