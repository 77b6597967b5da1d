// Package ui holds the color themes and the small amount of terminal
// styling shared by the CLI and the calibration report.
package ui
