package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// resultIterator is the part of neo4j.ResultWithContext the mirror reads.
type resultIterator interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// sessionRunner is the part of neo4j.SessionWithContext the mirror uses.
type sessionRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (resultIterator, error)
	Close(ctx context.Context) error
}

type sessionFactory func(ctx context.Context) sessionRunner

type driverSession struct {
	session neo4j.SessionWithContext
}

func (d *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (resultIterator, error) {
	return d.session.Run(ctx, cypher, params)
}

func (d *driverSession) Close(ctx context.Context) error {
	return d.session.Close(ctx)
}

func driverSessions(driver neo4j.DriverWithContext) sessionFactory {
	return func(ctx context.Context) sessionRunner {
		return &driverSession{session: driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})}
	}
}

// run executes the statements in order in one session and stops at the
// first failure.
func run(ctx context.Context, newSession sessionFactory, stmts ...statement) error {
	session := newSession(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	for _, st := range stmts {
		if _, err := session.Run(ctx, st.cypher, st.params); err != nil {
			return err
		}
	}
	return nil
}

type statement struct {
	cypher string
	params map[string]any
}
