// Package orchestration runs one or more multipliers on the same product
// concurrently and compares their results. It is decoupled from presentation
// through the ProgressReporter and ResultPresenter interfaces.
package orchestration
