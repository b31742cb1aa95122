// Package middleware provides the HTTP middleware chain shared by all module
// routers: panic recovery, request IDs, request-scoped time, client metadata,
// structured request logging, timeouts, content-type enforcement, latency
// metrics, and JWT authentication.
//
// Module handlers apply the chain themselves inside Register so each mounted
// subrouter is self-contained:
//
//	r.Use(middleware.Recovery(logger))
//	r.Use(middleware.RequestID)
//	r.Use(middleware.RequestTime)
//	r.Use(middleware.ClientMetadata)
//	r.Use(middleware.Logger(logger))
//	r.Use(middleware.Timeout(30 * time.Second))
//	r.Use(middleware.ContentTypeJSON)
//	r.Use(middleware.Latency)
//	r.Use(middleware.RequireAuth(validator, logger))
package middleware
