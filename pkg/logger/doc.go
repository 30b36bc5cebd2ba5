// Package logger builds configured slog.Logger instances for the queue
// services.
//
// The factory applies functional options over production-safe defaults
// (JSON format, info level):
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Environment, "worker"),
//	    logger.WithAttr(slog.String("version", version)),
//	)
//	logger.SetAsDefault(log)
//
// Development environments get text output at debug level; everything else
// gets JSON at info level for log aggregation.
package logger
