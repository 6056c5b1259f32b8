package module

import "meitanbot/internal/services/reply/domain"

// Ports defines reply module ports exposed via the registry
type Ports struct {
	Router domain.RouterPort
	Pruner domain.PrunerPort
}
