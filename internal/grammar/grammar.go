// Package grammar models the command grammar that bounds the enumeration
// space: a set of primitive command specifications loaded from a declarative
// JSON syntax file, plus the Enumerator that walks legal derivations.
package grammar

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nlcmd/translator/pkg/errors"
	"github.com/nlcmd/translator/pkg/logger"
)

// Reserved symbols shared between the grammar and the search driver.
const (
	// StartSymbol is the synthetic token seeding every derivation.
	StartSymbol = "__START_SYMBOL__"
	// EOF marks a grammar-legal termination point when offered as a token.
	EOF = "<EOF>"
	// Hole is the placeholder for a free command argument. It renders as
	// "*" in reconstructed commands.
	Hole = "__HOLE__"
	// Pipe separates pipeline stages. The search driver truncates branches
	// at pipes rather than expanding compound commands.
	Pipe = "|"
)

// CommandSpec describes one primitive command: its name, the flags it
// accepts, and how many argument slots it takes.
type CommandSpec struct {
	Name    string   `json:"name"`
	Flags   []string `json:"flags"`
	MinArgs int      `json:"minArgs"`
	MaxArgs int      `json:"maxArgs"`
}

type syntaxFile struct {
	Commands []CommandSpec `json:"commands"`
}

// Grammar is the immutable set of command specifications. Derivation state
// lives in Enumerator, not here, so one Grammar can back many traversals.
type Grammar struct {
	order            []string
	commands         map[string]*CommandSpec
	maxPipelineDepth int
}

// LoadSyntax reads one or more JSON syntax files and merges their command
// specs into a single Grammar. Later files override earlier ones on name
// collision.
func LoadSyntax(maxPipelineDepth int, paths ...string) (*Grammar, error) {
	if maxPipelineDepth < 1 {
		maxPipelineDepth = 1
	}
	g := &Grammar{
		commands:         make(map[string]*CommandSpec),
		maxPipelineDepth: maxPipelineDepth,
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading syntax file %s: %w", path, err)
		}
		var sf syntaxFile
		if err := json.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrMalformedSyntax, path, err)
		}
		for i := range sf.Commands {
			spec := sf.Commands[i]
			if err := spec.validate(); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", errors.ErrMalformedSyntax, path, err)
			}
			if _, seen := g.commands[spec.Name]; !seen {
				g.order = append(g.order, spec.Name)
			}
			g.commands[spec.Name] = &spec
		}
	}
	if len(g.commands) == 0 {
		return nil, fmt.Errorf("%w: no command specs found", errors.ErrMalformedSyntax)
	}
	logger.WithComponent("grammar").Info("grammar loaded",
		"commands", len(g.commands),
		"max_pipeline_depth", maxPipelineDepth,
	)
	return g, nil
}

// New builds a Grammar directly from command specs. Used by tests and by
// callers that assemble grammars programmatically.
func New(maxPipelineDepth int, specs ...CommandSpec) *Grammar {
	if maxPipelineDepth < 1 {
		maxPipelineDepth = 1
	}
	g := &Grammar{
		commands:         make(map[string]*CommandSpec),
		maxPipelineDepth: maxPipelineDepth,
	}
	for i := range specs {
		spec := specs[i]
		if _, seen := g.commands[spec.Name]; !seen {
			g.order = append(g.order, spec.Name)
		}
		g.commands[spec.Name] = &spec
	}
	return g
}

func (s CommandSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("command spec with empty name")
	}
	if s.MinArgs < 0 || s.MaxArgs < s.MinArgs {
		return fmt.Errorf("command %q: invalid arg range [%d, %d]", s.Name, s.MinArgs, s.MaxArgs)
	}
	return nil
}

// CommandNames returns the command names in declaration order.
func (g *Grammar) CommandNames() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Lookup returns the spec for a command name, or nil if unknown.
func (g *Grammar) Lookup(name string) *CommandSpec {
	return g.commands[name]
}
