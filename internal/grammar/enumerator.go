package grammar

// Enumerator is a mutable cursor over the grammar's derivation state. The
// search driver pushes a token when it enters that token's grammar context
// and pops when it leaves, in strict nesting with its own recursion. An
// Enumerator is single-traversal state and is not safe for concurrent use;
// callers running parallel traversals need one Enumerator each.
type Enumerator struct {
	grammar *Grammar
	stack   []frame
}

type frameKind int

const (
	frameCommand frameKind = iota
	frameFlag
	frameHole
	framePipe
)

type frame struct {
	kind  frameKind
	token string
	// command-frame state
	spec      *CommandSpec
	argsSeen  int
	flagsSeen map[string]bool
	// flag/hole frames record the stack index of the command frame they
	// mutated. Indices stay valid across append reallocation; pointers into
	// the stack would not.
	owner int
}

// NewEnumerator creates a fresh derivation cursor over g.
func NewEnumerator(g *Grammar) *Enumerator {
	return &Enumerator{grammar: g}
}

// currentCommandIndex returns the stack index of the command frame governing
// the next token, or -1 when the cursor expects a command name (empty stack
// or just after a pipe).
func (e *Enumerator) currentCommandIndex() int {
	for i := len(e.stack) - 1; i >= 0; i-- {
		switch e.stack[i].kind {
		case frameCommand:
			return i
		case framePipe:
			return -1
		}
	}
	return -1
}

func (e *Enumerator) currentCommand() *frame {
	if i := e.currentCommandIndex(); i >= 0 {
		return &e.stack[i]
	}
	return nil
}

func (e *Enumerator) pipelineStages() int {
	stages := 1
	for i := range e.stack {
		if e.stack[i].kind == framePipe {
			stages++
		}
	}
	return stages
}

// LegalNextTokens reports every token the grammar permits next given the
// current derivation stack. EOF is included exactly when termination is
// legal, mirroring how the driver treats it as a non-extending sentinel.
func (e *Enumerator) LegalNextTokens() []string {
	cmd := e.currentCommand()
	if cmd == nil {
		return e.grammar.CommandNames()
	}

	legal := make([]string, 0, len(cmd.spec.Flags)+3)
	for _, flag := range cmd.spec.Flags {
		if !cmd.flagsSeen[flag] {
			legal = append(legal, flag)
		}
	}
	if cmd.argsSeen < cmd.spec.MaxArgs {
		legal = append(legal, Hole)
	}
	if cmd.argsSeen >= cmd.spec.MinArgs && e.pipelineStages() < e.grammar.maxPipelineDepth {
		legal = append(legal, Pipe)
	}
	if e.IsTerminationLegal() {
		legal = append(legal, EOF)
	}
	return legal
}

// IsTokenLegal reports whether token is in the current legal-next set.
func (e *Enumerator) IsTokenLegal(token string) bool {
	for _, t := range e.LegalNextTokens() {
		if t == token {
			return true
		}
	}
	return false
}

// Push enters the grammar context of token. The caller must have verified
// legality via IsTokenLegal; pushing an unknown command name is a no-op
// frame that accepts nothing, which the driver's legality check prevents
// from ever happening.
func (e *Enumerator) Push(token string) {
	cmdIdx := e.currentCommandIndex()
	switch {
	case token == Pipe:
		e.stack = append(e.stack, frame{kind: framePipe, token: token, owner: -1})
	case token == Hole:
		if cmdIdx >= 0 {
			e.stack[cmdIdx].argsSeen++
		}
		e.stack = append(e.stack, frame{kind: frameHole, token: token, owner: cmdIdx})
	case cmdIdx < 0:
		spec := e.grammar.Lookup(token)
		e.stack = append(e.stack, frame{
			kind:      frameCommand,
			token:     token,
			spec:      spec,
			flagsSeen: make(map[string]bool),
			owner:     -1,
		})
	default:
		e.stack[cmdIdx].flagsSeen[token] = true
		e.stack = append(e.stack, frame{kind: frameFlag, token: token, owner: cmdIdx})
	}
}

// Pop leaves the most recently pushed context, undoing its effect on the
// enclosing command frame. Pop on an empty stack is a nesting bug in the
// caller and panics.
func (e *Enumerator) Pop() {
	if len(e.stack) == 0 {
		panic("grammar: Pop on empty derivation stack")
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	switch top.kind {
	case frameHole:
		if top.owner >= 0 {
			e.stack[top.owner].argsSeen--
		}
	case frameFlag:
		if top.owner >= 0 {
			delete(e.stack[top.owner].flagsSeen, top.token)
		}
	}
}

// IsTerminationLegal reports whether ending the command here is
// grammar-legal: at least one command has been derived, no pipe is dangling,
// and every command stage has consumed its minimum argument count.
func (e *Enumerator) IsTerminationLegal() bool {
	if len(e.stack) == 0 {
		return false
	}
	if e.stack[len(e.stack)-1].kind == framePipe {
		return false
	}
	sawCommand := false
	for i := range e.stack {
		if e.stack[i].kind != frameCommand {
			continue
		}
		sawCommand = true
		f := &e.stack[i]
		if f.spec == nil || f.argsSeen < f.spec.MinArgs {
			return false
		}
	}
	return sawCommand
}

// Depth returns the current derivation-stack depth. Used by tests to verify
// push/pop nesting.
func (e *Enumerator) Depth() int {
	return len(e.stack)
}
