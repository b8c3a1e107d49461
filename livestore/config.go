package livestore

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signadot/livequery/gql"
)

// Spec holds the runtime specification for a Store.
// Config contains the serializable settings loaded from a file.
type Spec struct {
	Config *Config
	Log    *slog.Logger

	// Registerer receives the store's metrics.  Nil leaves them
	// unregistered.
	Registerer prometheus.Registerer

	// Executor runs one execution of a live query.  Nil uses gql.Run.
	Executor func(gql.ExecuteParams) (*gql.Result, error)
}
