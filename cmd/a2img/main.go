// Command a2img composes an Apple II disk image by running a
// disk-insertion script (§4.9) against a freshly allocated image buffer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gmofishsauce/a2asm/image"
)

func main() {
	variant := flag.String("variant", "block", "image geometry: block (ProDOS) or nibble (DOS 3.3/RWTS/RW18)")
	blocks := flag.Int("blocks", 280, "block count for -variant=block")
	tracks := flag.Int("tracks", 35, "track count for -variant=nibble")
	sectors := flag.Int("sectors", 16, "sectors per track for -variant=nibble")
	out := flag.String("out", "", "output image path (required)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: image mode requires a script file")
		os.Exit(1)
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required")
		os.Exit(1)
	}

	var img *image.DiskImage
	switch *variant {
	case "block":
		img = image.NewBlockDiskImage(*blocks)
	case "nibble":
		img = image.NewNibbleDiskImage(*tracks, *sectors)
	default:
		fmt.Fprintf(os.Stderr, "Error: unrecognized -variant '%s'\n", *variant)
		os.Exit(1)
	}

	errCount := 0
	for _, script := range flag.Args() {
		report := func(line int, err error) {
			errCount++
			fmt.Fprintf(os.Stderr, "%s:%d: error: %v\n", script, line, err)
		}
		if err := image.RunScript(img, script, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s)\n", errCount)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, img.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not write image '%s': %v\n", *out, err)
		os.Exit(1)
	}
}
