// Command pdf-handouts merges lesson PDFs and stamps headers/footers
// onto them for printing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Rick-Wilson/pdf-handouts/merge"
	"github.com/Rick-Wilson/pdf-handouts/metadata"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/parser"
	"github.com/Rick-Wilson/pdf-handouts/stamp"
	"github.com/Rick-Wilson/pdf-handouts/writer"
)

// verboseFlag registers -v and returns a logger factory honoring it.
func verboseFlag(fs *flag.FlagSet) func() observability.Logger {
	v := fs.Bool("v", false, "Verbose progress logging to stderr")
	return func() observability.Logger {
		if *v {
			return observability.NewStderrLogger(observability.LevelDebug)
		}
		return observability.NopLogger{}
	}
}

const usageText = `Usage: pdf-handouts <command> [flags] [inputs...]

Commands:
  merge    Merge PDF files into one (inputs may be glob patterns)
  headers  Add a title and footers to a PDF
  build    Merge, then add headers/footers, in one step
  info     Show page count and metadata for a PDF

Run "pdf-handouts <command> -h" for command flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usageText)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "merge":
		err = cmdMerge(os.Args[2:])
	case "headers":
		err = cmdHeaders(os.Args[2:])
	case "build":
		err = cmdBuild(os.Args[2:])
	case "info":
		err = cmdInfo(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s\n", os.Args[1], usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (required)")
	openAfter := fs.Bool("open", false, "Open the result with the system viewer")
	logger := verboseFlag(fs)
	fs.Parse(args)

	if *output == "" {
		return fmt.Errorf("merge requires -o <output>")
	}
	inputs, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}

	store, err := merge.Files(context.Background(), inputs, merge.Options{Logger: logger()})
	if err != nil {
		return err
	}
	if err := writer.WriteFile(*output, store, writer.Config{Compress: true, Logger: logger()}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Output: %s\n", *output)
	if *openAfter {
		return openFile(*output)
	}
	return nil
}

func cmdHeaders(args []string) error {
	fs := flag.NewFlagSet("headers", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (required)")
	openAfter := fs.Bool("open", false, "Open the result with the system viewer")
	logger := verboseFlag(fs)
	sf := registerStampFlags(fs)
	fs.Parse(args)

	if *output == "" {
		return fmt.Errorf("headers requires -o <output>")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("headers requires exactly one input file")
	}
	input := fs.Arg(0)
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("Input file not found: %s", input)
	}

	opts, err := sf.options(fs)
	if err != nil {
		return err
	}
	if err := stamp.File(context.Background(), input, *output, opts,
		parser.Config{Logger: logger()}, writer.Config{Compress: true, Logger: logger()}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Output: %s\n", *output)
	if *openAfter {
		return openFile(*output)
	}
	return nil
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (required)")
	openAfter := fs.Bool("open", false, "Open the result with the system viewer")
	logger := verboseFlag(fs)
	sf := registerStampFlags(fs)
	fs.Parse(args)

	if *output == "" {
		return fmt.Errorf("build requires -o <output>")
	}
	inputs, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}
	opts, err := sf.options(fs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fmt.Fprintf(os.Stderr, "Step 1: Merging %d PDF files...\n", len(inputs))
	store, err := merge.Files(ctx, inputs, merge.Options{Logger: logger()})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "pdf-handouts-merged-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := writer.WriteFile(tmpPath, store, writer.Config{Compress: true}); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Step 2: Adding headers/footers...")
	if err := stamp.File(ctx, tmpPath, *output, opts,
		parser.Config{Logger: logger()}, writer.Config{Compress: true, Logger: logger()}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Output: %s\n", *output)
	if *openAfter {
		return openFile(*output)
	}
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info requires exactly one input file")
	}
	input := fs.Arg(0)
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("Input file not found: %s", input)
	}

	store, err := parser.Load(input, parser.Config{})
	if err != nil {
		return err
	}
	meta, err := metadata.Extract(store)
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", input)
	fmt.Printf("Pages: %d\n", meta.PageCount)
	if meta.Title != "" {
		fmt.Printf("Title: %s\n", meta.Title)
	}
	if meta.Author != "" {
		fmt.Printf("Author: %s\n", meta.Author)
	}
	return nil
}
