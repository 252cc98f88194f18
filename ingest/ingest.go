// Package ingest populates the property graph from a corpus of HTML
// articles. Every article yields Doc, Equation and Feature nodes joined by
// EQN_IN and HAS_FTR relationships; all statements are idempotent merges,
// each in its own write transaction, so re-running an ingest converges on
// the same graph and an interrupted run leaves a well-formed prefix.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BitWhispererSumedh/OperatorTree/feature"
	"github.com/BitWhispererSumedh/OperatorTree/graphstore"
	"github.com/BitWhispererSumedh/OperatorTree/mathml"
	"github.com/BitWhispererSumedh/OperatorTree/optree"
)

// Statements issued per document. Node creation merges on the id key;
// relationship creation matches both endpoints first.
const (
	mergeDocStmt      = `MERGE (doc:Doc {id: $doc_id})`
	mergeEquationStmt = `MERGE (eq:Equation {id: $equation_id}) SET eq.mathml = $mathml, eq.alttext = $alttext`
	mergeFeatureStmt  = `MERGE (feat:Feature {id: $feature_id})`
	mergeEqnInStmt    = `MATCH (eq:Equation {id: $equation_id}), (doc:Doc {id: $doc_id}) MERGE (eq)-[:EQN_IN]->(doc)`
	mergeHasFtrStmt   = `MATCH (eq:Equation {id: $equation_id}), (f:Feature {id: $feature_id}) MERGE (eq)-[:HAS_FTR]->(f)`
)

// Config holds ingestion settings.
type Config struct {
	// Workers bounds document-level parallelism. Documents are independent
	// and their writes commute, so any value >= 1 is safe. Defaults to 1.
	Workers int

	// Normalizer configures the operator-tree compression passes. The zero
	// value enables all of them.
	Normalizer optree.Config

	// Logger receives per-document progress and per-equation skip reasons.
	// Defaults to slog.Default.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("ingest config cannot be nil")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Normalizer == (optree.Config{}) {
		c.Normalizer = optree.DefaultConfig()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Ingester walks a corpus directory and indexes every block equation.
type Ingester struct {
	driver graphstore.Driver
	cfg    Config
	log    *slog.Logger
}

// New creates an ingester over an explicitly provided store driver.
func New(driver graphstore.Driver, cfg *Config) (*Ingester, error) {
	if driver == nil {
		return nil, errors.New("ingest requires a graph store driver")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest config: %w", err)
	}
	return &Ingester{driver: driver, cfg: *cfg, log: cfg.Logger}, nil
}

// IngestDir ingests every file in a flat corpus directory. The filename is
// the Doc id. Per-document failures (unreadable file, store errors) do not
// stop the remaining documents; they are joined into the returned error.
func (in *Ingester) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read corpus folder: %w", err)
	}

	runID := uuid.NewString()
	log := in.log.With(slog.String("run", runID))
	log.Info("corpus ingest started", slog.String("dir", dir), slog.Int("workers", in.cfg.Workers))

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.Workers)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		doc := entry.Name()
		g.Go(func() error {
			if err := in.ingestDoc(gctx, doc, filepath.Join(dir, doc)); err != nil {
				log.Error("document ingest failed", slog.String("doc", doc), slog.String("err", err.Error()))
				mu.Lock()
				errs = append(errs, fmt.Errorf("ingest %s: %w", doc, err))
				mu.Unlock()
				return nil
			}
			log.Info("document ingested", slog.String("doc", doc))
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// ingestDoc indexes a single document using its own session. A malformed
// equation is skipped with a warning; extraction and store failures abort
// the document.
func (in *Ingester) ingestDoc(ctx context.Context, docID, path string) error {
	eqs, err := mathml.ExtractFile(path)
	if err != nil {
		return err
	}

	session, err := in.driver.Session(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer session.Close(ctx)

	if err := session.ExecuteWrite(ctx, mergeDocStmt, map[string]any{"doc_id": docID}); err != nil {
		return err
	}

	for i, eq := range eqs {
		root, err := optree.Parse(eq.MathML, in.cfg.Normalizer)
		if err != nil {
			in.log.Warn("skipping equation",
				slog.String("doc", docID),
				slog.Int("index", i),
				slog.String("err", err.Error()))
			continue
		}

		tree := optree.NewGraph(root)
		eqID := EquationID(eq.MathML)

		err = session.ExecuteWrite(ctx, mergeEquationStmt, map[string]any{
			"equation_id": eqID,
			"mathml":      eq.MathML,
			"alttext":     eq.AltText,
		})
		if err != nil {
			return err
		}
		err = session.ExecuteWrite(ctx, mergeEqnInStmt, map[string]any{
			"equation_id": eqID,
			"doc_id":      docID,
		})
		if err != nil {
			return err
		}

		for _, fpath := range feature.Paths(tree) {
			id := pathParam(fpath)
			if err := session.ExecuteWrite(ctx, mergeFeatureStmt, map[string]any{"feature_id": id}); err != nil {
				return err
			}
			err = session.ExecuteWrite(ctx, mergeHasFtrStmt, map[string]any{
				"equation_id": eqID,
				"feature_id":  id,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// EquationID canonicalizes equation identity to a content hash of the
// MathML string. The alttext is a node property, not part of the identity.
func EquationID(mathml string) string {
	sum := sha256.Sum256([]byte(mathml))
	return hex.EncodeToString(sum[:])
}

// pathParam converts an operator path into the driver's list parameter
// form.
func pathParam(path []string) []any {
	out := make([]any, len(path))
	for i, label := range path {
		out[i] = label
	}
	return out
}
