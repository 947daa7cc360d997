package util

import "go.uber.org/zap"

// BestEffort runs a non-critical side effect: a failure is logged and
// swallowed so it can never fail the primary operation. Audit and
// notification writes go through here instead of ad hoc ignored errors.
func BestEffort(logger *zap.Logger, name string, fn func() error) {
	if err := fn(); err != nil && logger != nil {
		logger.Warn("non-critical side effect failed",
			zap.String("effect", name),
			zap.Error(err))
	}
}
