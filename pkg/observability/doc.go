/*
Package observability binds Prometheus collectors to the cascade lifecycle hooks.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, _ := cascade.New(src, cascade.WithLifecycleHooks(metrics.Hooks()))

It also offers LogHooks, which mirror the same events to a structured logger.
*/
package observability
