// Package reconcile compares the desired mirror state
// derived from the source platform with the actual
// state of both platforms and issues the minimal API
// calls to converge them: ensure a target repository
// exists for each candidate, then ensure a push mirror
// points at it. One sequential pass, fail-fast per
// repository; authentication failures abort the run.
package reconcile
