// Package runtime implements the cascade expansion loop: the nuclide pool,
// the admission filters and the result aggregator. It is synchronous; the
// root package runs it on a worker goroutine.
package runtime
