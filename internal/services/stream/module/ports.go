package module

import "meitanbot/internal/services/stream/domain"

// Ports defines stream module ports exposed via the registry
type Ports struct {
	Status domain.StatusPort
}
