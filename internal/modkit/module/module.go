// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "meitanbot/internal/platform/net/http"
)

// Module is what every bot service exposes to main and to the admin surface
// services without HTTP routes implement MountRoutes as a no-op
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
