package module

import "meitanbot/internal/services/stats/domain"

// Ports defines stats module ports exposed via the registry
type Ports struct {
	Recorder domain.RecorderPort
	Flusher  domain.FlusherPort
	Reader   domain.ReaderPort
}
