// Command a2asm assembles 6502/65C02 source into a SAV object file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gmofishsauce/a2asm/asm"
)

func main() {
	cpuName := flag.String("cpu", "", "instruction set: 6502, 65c02, 65816 (overrides A2ASM_CPU)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: assemble mode requires at least one input file")
		os.Exit(1)
	}

	cfg := asm.LoadConfig()
	if *cpuName != "" {
		set, ok := asm.ParseInstructionSet(*cpuName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unrecognized -cpu '%s'\n", *cpuName)
			os.Exit(1)
		}
		cfg.InstructionSet = set
	}

	eng := asm.NewEngineFromConfig(cfg)
	for _, path := range flag.Args() {
		if err := eng.AssembleFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	for _, d := range eng.Reporter.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.Error())
	}

	if eng.ErrorCount() > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s), %d warning(s)\n", eng.ErrorCount(), eng.WarningCount())
		os.Exit(1)
	}
}
