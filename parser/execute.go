package parser

// WrapperCommand is the command that prefixes another command with a
// fixed set of its own arguments: a target selector followed by three
// position arguments, then the wrapped command. Wrappers nest without
// limit ("execute @e ~ ~ ~ execute @p ~ ~ ~ say hi").
const WrapperCommand = "execute"

// WrapperArity is the number of argument slots the wrapper consumes
// before its sub-command begins.
const WrapperArity = 4

// ActiveCommand describes the innermost command a completion or
// classification request should target after unwinding wrapper
// commands. It is derived fresh per query and never cached.
type ActiveCommand struct {
	// Wrapped is true when at least one wrapper prefix was unwound.
	Wrapped bool

	// WrapperComplete is false when the head wrapper is still missing
	// one of its own argument slots; ParamStage then identifies the
	// slot being filled.
	WrapperComplete bool

	// Tokens is the active slice: the full remaining wrapper when
	// incomplete, or the innermost sub-command when complete.
	Tokens []Token

	// ParamStage is the wrapper argument slot (0-based) currently
	// being filled. Only meaningful when WrapperComplete is false.
	ParamStage int
}

// ResolveActiveCommand unwinds wrapper prefixes from tokens until it
// reaches either a non-wrapper head token or a wrapper with a missing
// or blank argument slot. Non-wrapper commands come back as-is, marked
// complete.
func ResolveActiveCommand(tokens []Token) ActiveCommand {
	wrapped := false
	for len(tokens) > 0 && tokens[0].Value == WrapperCommand {
		wrapped = true
		for stage := 0; stage < WrapperArity; stage++ {
			if stage+1 >= len(tokens) || tokens[stage+1].Blank() {
				return ActiveCommand{
					Wrapped:    true,
					Tokens:     tokens,
					ParamStage: stage,
				}
			}
		}
		tokens = tokens[WrapperArity+1:]
	}
	return ActiveCommand{
		Wrapped:         wrapped,
		WrapperComplete: true,
		Tokens:          tokens,
	}
}
