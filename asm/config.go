package asm

import "github.com/xyproto/env/v2"

// Config gathers the engine knobs that would otherwise be threaded through
// as loose parameters: the active CPU variant and the PUT include search
// path. Defaults come from the environment the way the teacher wires its
// own run-time knobs, via github.com/xyproto/env/v2, so a CI job or a
// developer's shell can override them without a recompile.
type Config struct {
	InstructionSet InstructionSet
	SearchPath     []string
}

// envInstructionSet and envSearchPath name the environment variables
// consulted when a caller does not already have an explicit value.
const (
	envInstructionSet = "A2ASM_CPU"
	envSearchPath     = "A2ASM_INCLUDE_PATH"
)

// LoadConfig builds a Config from the environment, defaulting to a plain
// 6502 and an empty search path (PUT then tries only the including file's
// own directory, followed by the current directory, per §4.1).
func LoadConfig() Config {
	setName := env.Str(envInstructionSet, "6502")
	set, ok := ParseInstructionSet(setName)
	if !ok {
		set = CPU6502
	}
	return Config{
		InstructionSet: set,
		SearchPath:     splitSearchPath(env.Str(envSearchPath, "")),
	}
}

func splitSearchPath(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// NewEngineFromConfig builds an Engine wired to cfg.
func NewEngineFromConfig(cfg Config) *Engine {
	return NewEngine(cfg.InstructionSet, cfg.SearchPath)
}
