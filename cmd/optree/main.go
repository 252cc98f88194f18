// Command optree drives the mathematical-expression search engine: corpus
// ingestion into the property graph and the retrieval surfaces on top of
// it.
//
// Usage:
//
//	optree ingest <corpus-dir>
//	optree exact <query.html>
//	optree subseq <label>...
//	optree rank <json-feature-list>
//	optree paths <query.html> <label>...
//	optree test <name>
//
// Connection and pipeline settings come from the environment; see
// loadConfig.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/BitWhispererSumedh/OperatorTree/feature"
	"github.com/BitWhispererSumedh/OperatorTree/graphstore"
	"github.com/BitWhispererSumedh/OperatorTree/ingest"
	"github.com/BitWhispererSumedh/OperatorTree/mathml"
	"github.com/BitWhispererSumedh/OperatorTree/optree"
	"github.com/BitWhispererSumedh/OperatorTree/pathfind"
	"github.com/BitWhispererSumedh/OperatorTree/search"
)

type config struct {
	store      graphstore.Config
	workers    int
	normalizer optree.Config
	strict     bool
}

// loadConfig resolves settings from the environment. Compression passes
// default to enabled; the strict path-finder chaining is opt-in.
func loadConfig() config {
	return config{
		store: graphstore.Config{
			URI:      envString("OPTREE_NEO4J_URI", "bolt://localhost:7687"),
			Username: envString("OPTREE_NEO4J_USER", "neo4j"),
			Password: envString("OPTREE_NEO4J_PASS", ""),
		},
		workers: envInt("OPTREE_INGEST_WORKERS", 1),
		normalizer: optree.Config{
			CompressSubscripts:   envBool("OPTREE_COMPRESS_SUBSCRIPTS", true),
			CompressSuperscripts: envBool("OPTREE_COMPRESS_SUPERSCRIPTS", true),
			FixDerivatives:       envBool("OPTREE_FIX_DERIVATIVES", true),
		},
		strict: envBool("OPTREE_STRICT_CHAINING", false),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		return cast.ToInt(v)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return cast.ToBool(v)
	}
	return def
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg := loadConfig()
	ctx := context.Background()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "ingest":
		err = runIngest(ctx, cfg, rest)
	case "exact":
		err = runExact(ctx, cfg, rest)
	case "subseq":
		err = runSubseq(ctx, cfg, rest)
	case "rank":
		err = runRank(ctx, cfg, rest)
	case "paths":
		err = runPaths(cfg, rest)
	case "test":
		err = runTest(ctx, cfg, rest)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", slog.String("cmd", args[0]), slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: optree <ingest|exact|subseq|rank|paths|test> ...")
}

func runIngest(ctx context.Context, cfg config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ingest expects a corpus directory")
	}

	driver, err := graphstore.Connect(ctx, &cfg.store)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	ing, err := ingest.New(driver, &ingest.Config{
		Workers:    cfg.workers,
		Normalizer: cfg.normalizer,
	})
	if err != nil {
		return err
	}
	return ing.IngestDir(ctx, args[0])
}

func runExact(ctx context.Context, cfg config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exact expects a query html file")
	}

	paths, _, err := queryPaths(args[0], cfg.normalizer)
	if err != nil {
		return err
	}

	return withEngine(ctx, cfg, func(engine *search.Engine) error {
		ids, err := engine.ExactMatch(ctx, paths)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	})
}

func runSubseq(ctx context.Context, cfg config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subseq expects one or more operator labels")
	}

	return withEngine(ctx, cfg, func(engine *search.Engine) error {
		matches, err := engine.SubsequenceMatch(ctx, args)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%s\t%d features\n", m.EquationID, len(m.Features))
		}
		return nil
	})
}

func runRank(ctx context.Context, cfg config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("rank expects a json feature list")
	}

	var paths [][]string
	if err := json.Unmarshal([]byte(args[0]), &paths); err != nil {
		return fmt.Errorf("parse feature list: %w", err)
	}

	return withEngine(ctx, cfg, func(engine *search.Engine) error {
		groups, err := engine.Ranked(ctx, paths)
		if err != nil {
			return err
		}
		printGroups(groups)
		return nil
	})
}

// runPaths highlights label-sequence matches in the query equation itself;
// no store access involved.
func runPaths(cfg config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("paths expects a query html file and operator labels")
	}

	_, tree, err := queryPaths(args[0], cfg.normalizer)
	if err != nil {
		return err
	}

	nodes := pathfind.Find(tree, args[1:], pathfind.Config{StrictChaining: cfg.strict})
	ids := nodes.ToSlice()
	for _, id := range ids {
		fmt.Printf("%d\t%s\n", id, tree.Data(id))
	}
	return nil
}

func runTest(ctx context.Context, cfg config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("test expects a case name, one of: %s", strings.Join(testNames(), ", "))
	}
	tc, ok := testMap[args[0]]
	if !ok {
		return fmt.Errorf("unknown test case %q, one of: %s", args[0], strings.Join(testNames(), ", "))
	}
	return tc(ctx, cfg)
}

// testMap names ad-hoc driver scenarios. Not a stable surface.
var testMap = map[string]func(ctx context.Context, cfg config) error{
	"subseq_simple": func(ctx context.Context, cfg config) error {
		return runSubseq(ctx, cfg, []string{"times", "plus", "times"})
	},
	"subseq_complex": func(ctx context.Context, cfg config) error {
		return runSubseq(ctx, cfg, []string{"superscript", "times", "divide", "times", "superscript"})
	},
	"rank_simple": func(ctx context.Context, cfg config) error {
		return runRank(ctx, cfg, []string{`[["divide","times","superscript"]]`})
	},
	"rank_blend": func(ctx context.Context, cfg config) error {
		return runRank(ctx, cfg, []string{`[["superscript","times","superscript"],["times","plus","times"]]`})
	},
}

func testNames() []string {
	names := make([]string, 0, len(testMap))
	for name := range testMap {
		names = append(names, name)
	}
	return names
}

// queryPaths processes a single-equation query file identically to corpus
// entries and returns its feature paths and graph-form tree.
func queryPaths(path string, norm optree.Config) ([][]string, *optree.Graph, error) {
	eqs, err := mathml.ExtractFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(eqs) == 0 {
		return nil, nil, fmt.Errorf("no block equation in %s", path)
	}

	root, err := optree.Parse(eqs[0].MathML, norm)
	if err != nil {
		return nil, nil, err
	}
	tree := optree.NewGraph(root)
	return feature.Paths(tree), tree, nil
}

func withEngine(ctx context.Context, cfg config, fn func(*search.Engine) error) error {
	driver, err := graphstore.Connect(ctx, &cfg.store)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	session, err := driver.Session(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	engine, err := search.NewEngine(session)
	if err != nil {
		return err
	}
	return fn(engine)
}

func printGroups(groups []search.RankGroup) {
	for _, g := range groups {
		for _, id := range g.Equations {
			fmt.Printf("%.4f\t%s\n", g.Score, id)
		}
	}
}
