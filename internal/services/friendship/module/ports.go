package module

import "meitanbot/internal/services/friendship/domain"

// Ports defines friendship module ports exposed via the registry
type Ports struct {
	Reconciler domain.ReconcilerPort
	Counter    domain.CounterPort
}
