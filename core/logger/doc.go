// Package logger builds the zap logger shared by the CLI, the run controller and the
// HTTP API.
//
// Level selects debug, info, warn or error. Format selects json (the default, for log
// shipping) or console (colored, for interactive sync runs). The debug level uses the
// zap development config so timestamps are ISO8601.
//
// WithRayID attaches the RayID of a Fiber request so that every line logged while a
// triggered run is handled can be correlated with the request that started it:
//
//	l := logger.WithRayID(log, c)
//	l.Info("Sync run requested", zap.Strings("kinds", kinds))
package logger
