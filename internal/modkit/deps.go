// Package modkit provides module wiring and core deps
package modkit

import (
	"contestwatch/internal/platform/config"
	"contestwatch/internal/platform/logger"
	"contestwatch/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Metrics *metrics.Metrics
}
