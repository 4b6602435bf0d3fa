// Package fsops holds the plain file operations used by context ingestion:
// ordered directory listing, text reads and scoped file copies.
package fsops
