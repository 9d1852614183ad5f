// Package config loads hostcall configuration.
//
// Values come from Default, then an optional YAML file, then environment
// variables prefixed with HOSTCALL:
//
//	HOSTCALL_BLOCK_SIZE         shared block size in bytes
//	HOSTCALL_BLOCK_BACKING      slice or wazero
//	HOSTCALL_TRANSPORT_MODE     direct or channel
//	HOSTCALL_TRANSPORT_TIMEOUT  per-call timeout, e.g. 2s
//	HOSTCALL_LOG_LEVEL          debug, info, warn, error
//	HOSTCALL_LOG_FORMAT         json or console
//	HOSTCALL_LOG_DEVELOPMENT    development logging
//	HOSTCALL_METRICS_ENABLED    serve Prometheus metrics
//	HOSTCALL_METRICS_ADDR       metrics listen address
//
// The same keys in YAML:
//
//	block:
//	  size: 65536
//	  backing: wazero
//	log:
//	  level: debug
package config
