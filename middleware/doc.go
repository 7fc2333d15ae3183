// Package middleware provides router middleware for request IDs and
// structured request logging.
//
//	r := router.New[*router.Context](
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.Logging[*router.Context](log),
//		),
//	)
//
// Put RequestID first so the logging middleware and every handler see the
// ID. RequestIDExtractor plugs the ID into a logger built by core/logger:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
package middleware
