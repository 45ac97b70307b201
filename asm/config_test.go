package asm

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv(envInstructionSet)
	os.Unsetenv(envSearchPath)
	cfg := LoadConfig()
	if cfg.InstructionSet != CPU6502 {
		t.Fatalf("default InstructionSet = %v, want CPU6502", cfg.InstructionSet)
	}
	if len(cfg.SearchPath) != 0 {
		t.Fatalf("default SearchPath = %v, want empty", cfg.SearchPath)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	os.Setenv(envInstructionSet, "65c02")
	os.Setenv(envSearchPath, "/a/inc:/b/inc")
	defer os.Unsetenv(envInstructionSet)
	defer os.Unsetenv(envSearchPath)

	cfg := LoadConfig()
	if cfg.InstructionSet != CPU65C02 {
		t.Fatalf("InstructionSet = %v, want CPU65C02", cfg.InstructionSet)
	}
	want := []string{"/a/inc", "/b/inc"}
	if len(cfg.SearchPath) != len(want) {
		t.Fatalf("SearchPath = %v, want %v", cfg.SearchPath, want)
	}
	for i := range want {
		if cfg.SearchPath[i] != want[i] {
			t.Fatalf("SearchPath[%d] = %q, want %q", i, cfg.SearchPath[i], want[i])
		}
	}
}

func TestLoadConfigInvalidCPUFallsBackTo6502(t *testing.T) {
	os.Setenv(envInstructionSet, "z80")
	defer os.Unsetenv(envInstructionSet)
	cfg := LoadConfig()
	if cfg.InstructionSet != CPU6502 {
		t.Fatalf("invalid CPU name should fall back to CPU6502, got %v", cfg.InstructionSet)
	}
}

func TestSplitSearchPathEmpty(t *testing.T) {
	if got := splitSearchPath(""); got != nil {
		t.Fatalf("splitSearchPath(\"\") = %v, want nil", got)
	}
}

func TestNewEngineFromConfig(t *testing.T) {
	e := NewEngineFromConfig(Config{InstructionSet: CPU65C02})
	if e == nil {
		t.Fatal("NewEngineFromConfig returned nil")
	}
}
