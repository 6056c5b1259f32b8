package module

import "meitanbot/internal/services/command/domain"

// Ports defines command module ports exposed via the registry
type Ports struct {
	Executor domain.ExecutorPort
}
