// Package application wires the loader, merge engine, node id resolver and
// env file generator into the config merge pipeline. It keeps the main
// package focused on CLI parsing and process exit handling.
package application
