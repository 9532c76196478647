package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/mdattr/internal/attr"
	"github.com/dgallion1/mdattr/internal/config"
	mdlog "github.com/dgallion1/mdattr/internal/log"
)

// ErrInvalidFlag is returned for flag values that cannot be used.
var ErrInvalidFlag = errors.New("invalid flag")

// cliConfig holds the flag values shared by every subcommand. Policy flags
// override the fields of the --policy file only when set explicitly.
type cliConfig struct {
	PolicyFile     string
	Scope          string
	Extend         []string
	AllowDangerous bool
	Elements       []string
	NoATXInline    bool
	NoBlock        bool
	Output         string

	Log *mdlog.Config
}

func newCLIConfig() *cliConfig {
	return &cliConfig{
		Scope: string(attr.ScopeExtended),
		Log:   mdlog.NewConfig(),
	}
}

func (c *cliConfig) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.PolicyFile, "policy", "", "YAML attribute policy file")
	flags.StringVar(&c.Scope, "scope", c.Scope, "trust scope: "+scopeNames())
	flags.StringArrayVar(&c.Extend, "extend", nil,
		"extra attribute names for a node type, as type=name[,name...] (repeatable; type may be *)")
	flags.BoolVar(&c.AllowDangerous, "allow-dangerous", false, "allow DOM event handler attributes (on*)")
	flags.StringSliceVar(&c.Elements, "elements", nil, "node types to decorate (default all supported)")
	flags.BoolVar(&c.NoATXInline, "no-atx-inline", false, "ignore {attrs} at the end of ATX headings")
	flags.BoolVar(&c.NoBlock, "no-block", false, "ignore attribute paragraphs under headings")
	flags.StringVarP(&c.Output, "output", "o", "", "output file; a directory when rendering several inputs")
	c.Log.RegisterFlags(flags)
}

func (c *cliConfig) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc("scope",
		cobra.FixedCompletions(scopeList(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering scope completion: %w", err)
	}

	var elements []string
	for _, k := range attr.SupportedElements() {
		elements = append(elements, k.String())
	}
	err = cmd.RegisterFlagCompletionFunc("elements",
		cobra.FixedCompletions(elements, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering elements completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc("policy",
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering policy completion: %w", err)
	}

	return c.Log.RegisterCompletions(cmd)
}

// Policy loads the --policy file, or the defaults, and applies the policy
// flags that were set on the command line.
func (c *cliConfig) Policy(flags *pflag.FlagSet) (*config.Policy, string, error) {
	pol, hash, err := config.LoadPolicyWithHash(c.PolicyFile)
	if err != nil {
		return nil, "", err
	}

	if flags.Changed("scope") {
		pol.Scope = c.Scope
	}
	if flags.Changed("extend") {
		extend, err := parseExtend(c.Extend)
		if err != nil {
			return nil, "", err
		}
		pol.Extend = extend
	}
	if flags.Changed("allow-dangerous") {
		pol.AllowDangerousDOMEventHandlers = c.AllowDangerous
	}
	if flags.Changed("elements") {
		pol.Elements = c.Elements
	}
	if flags.Changed("no-atx-inline") {
		pol.EnableATXHeaderInline = !c.NoATXInline
	}
	if flags.Changed("no-block") {
		pol.DisableBlockElements = c.NoBlock
	}

	if err := pol.Validate(); err != nil {
		return nil, "", err
	}
	return pol, hash, nil
}

// parseExtend turns "image=quality,loading" entries into an extension
// table. Repeated types accumulate.
func parseExtend(entries []string) (map[string][]string, error) {
	extend := make(map[string][]string, len(entries))
	for _, e := range entries {
		typ, names, ok := strings.Cut(e, "=")
		typ = strings.TrimSpace(typ)
		if !ok || typ == "" || names == "" {
			return nil, fmt.Errorf("%w: --extend %q: want type=name[,name...]", ErrInvalidFlag, e)
		}
		for _, name := range strings.Split(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				extend[typ] = append(extend[typ], name)
			}
		}
	}
	return extend, nil
}

func scopeList() []string {
	names := make([]string, len(attr.Scopes))
	for i, s := range attr.Scopes {
		names[i] = string(s)
	}
	return names
}

func scopeNames() string {
	return strings.Join(scopeList(), ", ")
}
