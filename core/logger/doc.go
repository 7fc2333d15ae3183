// Package logger builds slog loggers and provides attribute helpers for
// consistent structured logs.
//
//	log := logger.New(
//		logger.WithProduction("brokersite"),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	)
//
//	log.Error("api call failed",
//		logger.Component("apiclient"),
//		logger.Method(http.MethodGet),
//		logger.URL(u),
//		logger.StatusCode(resp.StatusCode),
//		logger.Headers(req.Header), // Authorization is redacted
//		logger.Error(err),
//	)
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops,
// so they are safe to pass unconditionally.
//
// Components that accept a logger default to a discard logger; NewNop
// returns one.
package logger
