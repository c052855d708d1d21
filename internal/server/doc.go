// Package server hosts the Fiber HTTP service that exposes a cache backend
// over the shared-cache protocol (get/put/list/delete by key), so one team
// can point many pip-accel instances at a single binary cache. The service
// attaches a request-id middleware and structured logging; storage semantics
// live entirely in the injected cache.Backend.
package server
