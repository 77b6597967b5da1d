// Package logging provides a unified logging interface for the polynomial
// multiplier. The engine only sees the Logger interface; the application picks
// a zerolog or standard library backend.
package logging
