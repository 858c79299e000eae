// Package store keeps a history of generated runs so they can be listed,
// re-rendered and published after the fetch that produced them.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/model"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("store: run not found")

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultListLimit = 50

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	City   string `json:"city,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines run history persistence.
type Store interface {
	// SaveRun inserts run, or replaces the stored copy with the same ID.
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error)
	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	// MarkPublished records the draft a run was saved as.
	MarkPublished(ctx context.Context, id uuid.UUID, postID int64, link string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the store for driver and applies the schema.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "listgen.db"
		}
		s, err = NewSQLite(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, apperr.NewConfigError("store.database_url", "required for the postgres driver")
		}
		s, err = NewPostgres(ctx, dsn)
	default:
		return nil, apperr.NewConfigError("store.driver", "unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// encodeRun marshals the list columns of run.
func encodeRun(run *model.Run) (items, failures []byte, err error) {
	list := run.Items
	if list == nil {
		list = []model.Item{}
	}
	items, err = json.Marshal(list)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal items")
	}
	fails := run.Failures
	if fails == nil {
		fails = []model.Failure{}
	}
	failures, err = json.Marshal(fails)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal failures")
	}
	return items, failures, nil
}

// decodeRun fills run from its stored columns.
func decodeRun(run *model.Run, id string, items, failures []byte) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return eris.Wrapf(err, "store: parse run id %q", id)
	}
	run.ID = parsed
	if err := json.Unmarshal(items, &run.Items); err != nil {
		return eris.Wrap(err, "store: unmarshal items")
	}
	if err := json.Unmarshal(failures, &run.Failures); err != nil {
		return eris.Wrap(err, "store: unmarshal failures")
	}
	if len(run.Failures) == 0 {
		run.Failures = nil
	}
	return nil
}
