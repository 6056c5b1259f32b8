// Package modkit provides module wiring and core deps
package modkit

import (
	"meitanbot/internal/modkit/repokit"
	"meitanbot/internal/platform/config"
	"meitanbot/internal/platform/logger"
	"meitanbot/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the matching backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore fills the storage seams from an opened store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}

// Named returns a copy of d whose logger carries the component name
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}
