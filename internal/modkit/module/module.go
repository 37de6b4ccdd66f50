// Package module defines the minimal contract for a modkit module plus port lookup helpers
package module

import (
	"contestwatch/internal/modkit/httpkit"
)

// Module defines the minimal contract used by modkit
// sibling to modkit.Module so a module can export its own ports type without import knots
type Module interface {
	MountRoutes(r httpkit.Router)
	Ports() any
	Name() string
}
