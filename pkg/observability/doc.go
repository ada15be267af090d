/*
Package observability binds pipeline lifecycle hooks to monitoring backends.

Metrics exposes Prometheus counters and histograms for runs and steps;
LoggingHooks writes the same events to a structured logger. Both return
domain.LifecycleHooks and can be combined with LifecycleHooks.Merge.
*/
package observability
