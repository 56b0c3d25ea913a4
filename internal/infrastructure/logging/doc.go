// Package logging builds the service's slog logger.
//
// Console output is JSON or text depending on logging.format. When
// logging.file.path is set, a JSON copy of every record is also written
// there through a slog-multi fanout handler. Every record carries the
// service name and version.
//
//	log := logging.New(cfg.Logging, version)
//	defer log.Close()
//	log.Info("api listening", "port", cfg.API.Port)
package logging
