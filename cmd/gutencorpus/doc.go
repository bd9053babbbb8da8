// Package main hosts the gutencorpus CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once per invocation, then
// dispatches to the internal packages: ingestion of the raw data directory,
// metadata cache warming, read-only queries against the store, and the HTTP
// query server. Output is rendered as tables on a terminal and as
// tab-separated values otherwise so it can be piped.
package main
