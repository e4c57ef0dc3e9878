// owl-reason runs the tableau reasoner against ontology documents in
// functional-style syntax: consistency checks, classification, and
// realization, with results printed as JSON and recorded in the configured
// store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/tableau/pkg/tableau"
	"github.com/cognicore/tableau/pkg/tableau/config"
	"github.com/cognicore/tableau/pkg/tableau/owl"
	"github.com/cognicore/tableau/pkg/tableau/parser"
	"github.com/cognicore/tableau/pkg/tableau/store"
	"github.com/cognicore/tableau/pkg/tableau/store/memstore"
	"github.com/cognicore/tableau/pkg/tableau/store/sqlite"
)

var (
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "owl-reason",
	Short: "OWL 2 tableau reasoner",
	Long: `owl-reason loads an ontology in OWL 2 functional-style syntax and
answers reasoning queries over it: consistency, the classified class
hierarchy, and the most specific types of every individual.

Ontology arguments are file paths, or names from the catalog in the
configuration file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [ontology]",
	Short: "Check ontology consistency",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [ontology]",
	Short: "Compute the class hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var realizeCmd = &cobra.Command{
	Use:   "realize [ontology]",
	Short: "Compute the most specific types of every individual",
	Args:  cobra.ExactArgs(1),
	RunE:  runRealize,
}

var runsCmd = &cobra.Command{
	Use:   "runs [ontology]",
	Short: "List recorded reasoning runs for an ontology",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuns,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file")
	rootCmd.AddCommand(checkCmd, classifyCmd, realizeCmd, runsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

/// session bundles what every subcommand needs: the parsed ontology, a
// reasoner over it, the result store, and a context honoring the configured
// timeout.
type session struct {
	name     string
	ontology *owl.Ontology
	reasoner *tableau.Reasoner
	store    store.Store
	ctx      context.Context
	cancel   context.CancelFunc
}

func newSession(cmd *cobra.Command, arg string) (*session, error) {
	path := arg
	if p, ok := cfg.Ontologies[arg]; ok {
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ont, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r, err := tableau.New(ont, tableau.Options{
		Logger:  logger,
		Workers: cfg.Reasoner.Workers,
	})
	if err != nil {
		return nil, err
	}

	var st store.Store
	if cfg.Store.Driver == "sqlite" {
		st, err = sqlite.Open(cmd.Context(), cfg.Store.Path)
		if err != nil {
			return nil, err
		}
	} else {
		st = memstore.New()
	}

	ctx, cancel := cmd.Context(), context.CancelFunc(func() {})
	if t := cfg.Reasoner.Timeout(); t > 0 {
		ctx, cancel = context.WithTimeout(ctx, t)
	}
	return &session{
		name:     string(ont.IRI),
		ontology: ont,
		reasoner: r,
		store:    st,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (s *session) close() {
	s.cancel()
	if err := s.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}

// record persists the run row; persistence failures are logged, not fatal,
// so the verdict still reaches stdout.
func (s *session) record(op string, consistent bool, started time.Time) string {
	id := ulid.Make().String()
	err := s.store.SaveRun(s.ctx, store.Run{
		ID:         id,
		Ontology:   s.name,
		Operation:  op,
		Consistent: consistent,
		StartedAt:  started,
		Duration:   time.Since(started),
	})
	if err != nil {
		logger.Warn("recording run", zap.Error(err))
	}
	return id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	started := time.Now().UTC()
	consistent, err := s.reasoner.IsConsistent(s.ctx)
	if err != nil {
		return err
	}
	id := s.record("check", consistent, started)
	return printJSON(struct {
		RunID      string `json:"run_id"`
		Ontology   string `json:"ontology"`
		Consistent bool   `json:"consistent"`
	}{id, s.name, consistent})
}

type classNode struct {
	IRI         owl.IRI   `json:"iri"`
	Equivalents []owl.IRI `json:"equivalents,omitempty"`
	Parents     []owl.IRI `json:"direct_parents,omitempty"`
	Children    []owl.IRI `json:"direct_children,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	started := time.Now().UTC()
	consistent, err := s.reasoner.IsConsistent(s.ctx)
	if err != nil {
		return err
	}
	tax, err := s.reasoner.Classify(s.ctx)
	if err != nil {
		return err
	}
	id := s.record("classify", consistent, started)

	var nodes []classNode
	var rows []store.Subsumption
	for _, c := range tax.Classes() {
		nodes = append(nodes, classNode{
			IRI:         c,
			Equivalents: tax.Equivalents(c),
			Parents:     tax.Parents(c),
			Children:    tax.Children(c),
		})
		direct := make(map[owl.IRI]struct{})
		for _, p := range tax.Parents(c) {
			direct[p] = struct{}{}
		}
		for _, a := range tax.Ancestors(c) {
			_, isDirect := direct[a]
			rows = append(rows, store.Subsumption{Sub: c, Super: a, Direct: isDirect})
		}
	}
	if err := s.store.SaveSubsumptions(s.ctx, id, rows); err != nil {
		logger.Warn("recording subsumptions", zap.Error(err))
	}

	return printJSON(struct {
		RunID      string      `json:"run_id"`
		Ontology   string      `json:"ontology"`
		Consistent bool        `json:"consistent"`
		Classes    []classNode `json:"classes"`
	}{id, s.name, consistent, nodes})
}

func runRealize(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	started := time.Now().UTC()
	consistent, err := s.reasoner.IsConsistent(s.ctx)
	if err != nil {
		return err
	}
	real, err := s.reasoner.Realize(s.ctx)
	if err != nil {
		return err
	}
	id := s.record("realize", consistent, started)

	type entry struct {
		Individual owl.IRI   `json:"individual"`
		Types      []owl.IRI `json:"types"`
		AllTypes   []owl.IRI `json:"all_types"`
	}
	var entries []entry
	var rows []store.IndividualType
	for _, ind := range real.Individuals() {
		types := real.Types(ind)
		entries = append(entries, entry{Individual: ind, Types: types, AllTypes: real.AllTypes(ind)})
		for _, c := range types {
			rows = append(rows, store.IndividualType{Individual: ind, Class: c})
		}
	}
	if err := s.store.SaveTypes(s.ctx, id, rows); err != nil {
		logger.Warn("recording types", zap.Error(err))
	}

	return printJSON(struct {
		RunID       string  `json:"run_id"`
		Ontology    string  `json:"ontology"`
		Consistent  bool    `json:"consistent"`
		Individuals []entry `json:"individuals"`
	}{id, s.name, consistent, entries})
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	runs, err := s.store.ListRuns(s.ctx, s.name, 50)
	if err != nil {
		return err
	}
	return printJSON(runs)
}
