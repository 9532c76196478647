// Command mdattr applies {key="value" .class #id} attribute annotations in
// markdown documents and renders them to HTML.
//
// # Usage
//
//	mdattr render [flags] [file.md|-] ...
//	mdattr ast [flags] [file.md|-]
//
// Attributes are kept or dropped according to a trust scope. The scope and
// the other policy fields come from a YAML file given with --policy, and
// the command-line flags override the file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/mdattr/internal/parser"
	"github.com/dgallion1/mdattr/internal/pipeline"
	"github.com/dgallion1/mdattr/internal/render"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := newCLIConfig()

	rootCmd := &cobra.Command{
		Use:   "mdattr",
		Short: "Apply attribute annotations in markdown",
		Long: `mdattr attaches {key="value" .class #id} annotations written in markdown to
the element before them, keeps the attributes the trust scope allows, and
renders the result to HTML.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := cfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "render [file.md|-] ...",
			Short: "Render markdown to HTML",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRender(cmd, cfg, args)
			},
		},
		&cobra.Command{
			Use:   "ast [file.md|-]",
			Short: "Print the decorated document tree as JSON",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAST(cmd, cfg, args)
			},
		},
	)

	return rootCmd
}

func newPipeline(cmd *cobra.Command, cfg *cliConfig) (*pipeline.Pipeline, *slog.Logger, error) {
	handler, err := cfg.Log.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(handler)

	pol, hash, err := cfg.Policy(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log.Debug("policy loaded", "path", cfg.PolicyFile, "scope", pol.Scope, "policy_hash", hash)

	return pipeline.New(pol.Transformer(), hash, nil, log, runtime.GOMAXPROCS(0)), log, nil
}

func readInputs(cmd *cobra.Command, args []string) ([]pipeline.Input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	inputs := make([]pipeline.Input, 0, len(args))
	for _, arg := range args {
		var (
			data []byte
			err  error
		)
		if arg == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("%w: stdin: %w", parser.ErrReadInput, err)
			}
		} else {
			data, err = os.ReadFile(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", parser.ErrReadInput, err)
			}
		}
		inputs = append(inputs, pipeline.Input{Filename: arg, Data: data})
	}
	return inputs, nil
}

func runRender(cmd *cobra.Command, cfg *cliConfig, args []string) error {
	p, log, err := newPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	results := p.RenderBatch(cmd.Context(), inputs)
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Filename, r.Err)
		}
		log.Info("rendered",
			"file", r.Filename,
			"annotations", r.Result.Attributes.Annotations,
			"applied", r.Result.Attributes.Applied,
			"rejected", r.Result.Attributes.Rejected,
		)
	}

	// Several inputs with -o go to a directory, one file per input.
	if len(results) > 1 && cfg.Output != "" && cfg.Output != "-" {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return fmt.Errorf("%w: %w", render.ErrWriteOutput, err)
		}
		for _, r := range results {
			path := filepath.Join(cfg.Output, htmlName(r.Filename))
			if err := os.WriteFile(path, []byte(withNewline(r.Result.HTML)), 0o644); err != nil {
				return fmt.Errorf("%w: %w", render.ErrWriteOutput, err)
			}
		}
		return nil
	}

	var out strings.Builder
	for _, r := range results {
		out.WriteString(withNewline(r.Result.HTML))
	}
	return writeOutput(cmd, cfg.Output, []byte(out.String()))
}

func runAST(cmd *cobra.Command, cfg *cliConfig, args []string) error {
	p, log, err := newPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}
	in := inputs[0]

	tree, st, err := p.Decorate(cmd.Context(), in.Filename, in.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", in.Filename, err)
	}
	log.Info("decorated", "file", in.Filename, "annotations", st.Annotations, "applied", st.Applied, "rejected", st.Rejected)

	out, err := json.MarshalIndent(tree.Export(tree.Root()), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrWriteOutput, err)
	}
	out = append(out, '\n')

	return writeOutput(cmd, cfg.Output, out)
}

func writeOutput(cmd *cobra.Command, path string, out []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(out)
		if err != nil {
			return fmt.Errorf("%w: %w", render.ErrWriteOutput, err)
		}
		return nil
	}

	err := os.WriteFile(path, out, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrWriteOutput, err)
	}
	return nil
}

// htmlName maps an input path to its output file name.
func htmlName(input string) string {
	if input == "-" {
		return "stdin.html"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
