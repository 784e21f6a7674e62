/*
Package observability turns the bot's lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
