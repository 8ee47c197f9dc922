// Package main provides the tntorch command line tool for working with
// .tt tensor files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/xx-fighting/tntorch/internal/serialization"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("tntorch %s\n", version)
	case "inspect":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: tntorch inspect <file.tt>")
			os.Exit(2)
		}
		if err := inspect(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
			os.Exit(1)
		}
	case "verify":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: tntorch verify <file.tt>")
			os.Exit(2)
		}
		if err := verify(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "verify: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("tntorch - compressed tensor toolkit")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  inspect <file.tt>    Print the header of a tensor file")
	fmt.Println("  verify <file.tt>     Check a tensor file's checksum and structure")
}

// inspect prints the header of a .tt file without reading its data section.
func inspect(path string) error {
	r, err := serialization.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("%s\n", path)
	fmt.Printf("  format:  %s\n", h.Format)
	fmt.Printf("  shape:   %v\n", h.Shape)
	fmt.Printf("  dtype:   %s\n", h.DType)
	fmt.Printf("  written: %s (tntorch %s)\n", h.CreatedAt.Format("2006-01-02 15:04:05 UTC"), h.LibraryVersion)
	fmt.Printf("  blocks:\n")
	for _, b := range h.Blocks {
		fmt.Printf("    %-6s mode %d  shape %-12v %8d bytes\n", b.Kind, b.Mode, b.Shape, b.Size)
	}
	if len(h.Metadata) > 0 {
		fmt.Printf("  metadata:\n")
		for k, v := range h.Metadata {
			fmt.Printf("    %s: %s\n", k, v)
		}
	}
	return nil
}

// verify reads the whole file, checking the checksum and that the blocks
// assemble into a consistent tensor.
func verify(path string) error {
	t, err := serialization.Load(path)
	if err != nil {
		if errors.Is(err, serialization.ErrChecksumMismatch) {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}
	fmt.Printf("%s: OK (%s, %d coefficients)\n", path, t, t.NumCoef())
	return nil
}
