package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	_ Driver  = (*neo4jDriver)(nil)
	_ Session = (*neo4jSession)(nil)
)

type neo4jDriver struct {
	drv neo4j.DriverWithContext
}

func connectNeo4j(ctx context.Context, cfg *Config) (Driver, error) {
	drv, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect graph store: %w", err)
	}
	if err := drv.VerifyConnectivity(ctx); err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("verify graph store connectivity: %w", err)
	}
	return &neo4jDriver{drv: drv}, nil
}

func (d *neo4jDriver) Session(ctx context.Context) (Session, error) {
	return &neo4jSession{
		session: d.drv.NewSession(ctx, neo4j.SessionConfig{}),
	}, nil
}

func (d *neo4jDriver) Close(ctx context.Context) error {
	return d.drv.Close(ctx)
}

func (d *neo4jDriver) Info() StoreInfo {
	return StoreInfo{Provider: "neo4j", NativeClient: d.drv}
}

type neo4jSession struct {
	session neo4j.SessionWithContext
}

func (s *neo4jSession) Run(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	result, err := s.session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect records: %w", err)
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, Record(rec.AsMap()))
	}
	return out, nil
}

func (s *neo4jSession) ExecuteWrite(ctx context.Context, query string, params map[string]any) error {
	_, err := s.session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	if err != nil {
		return fmt.Errorf("write transaction: %w", err)
	}
	return nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}
