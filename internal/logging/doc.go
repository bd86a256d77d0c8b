// Package logging provides structured logging for reflectify on top of zap.
//
// The Logger type takes a context on every call and copies correlation data
// out of it: the OpenTelemetry trace and span ids, plus the reflection, user
// and request ids attached with WithReflectionID, WithUserID and
// WithRequestID.
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithReflectionID(ctx, id)
//	logger.Info(ctx, "reflection analyzed", zap.String("level", "analytical"))
//
// Sensitive keys (api_key, token, authorization, ...) are redacted by the
// stdout encoder. Reflection text is never logged, only counts derived from it.
//
// Tests use NewTestLogger, which records entries in memory:
//
//	tl := logging.NewTestLogger()
//	svc := journal.New(engine, st, pub, tl.Logger)
//	tl.AssertLogged(t, zapcore.WarnLevel, "publish failed")
package logging
