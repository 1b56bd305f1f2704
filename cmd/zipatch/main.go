// Command zipatch parses and applies FFXIV-Classic ZiPatch files.
//
// Usage:
//
//	zipatch [flags] <patch-file-or-directory>...
//
// Directory arguments are walked recursively for *.patch files, which
// are processed in lexical order; patch order is significant when
// extracting.
package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipatch"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		output    string
		extract   bool
		verbose   bool
		verifyCRC bool
		table     bool
	)
	pflag.StringVarP(&output, "output", "o", ".", "output root directory for extraction")
	pflag.BoolVarP(&extract, "extract", "e", false, "apply patch contents under the output root")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pflag.BoolVar(&verifyCRC, "verify-crc", false, "validate each block's trailing CRC")
	pflag.BoolVarP(&table, "table", "t", false, "print decoded entries as a table")
	pflag.Usage = printUsage
	pflag.Parse()

	if pflag.NArg() == 0 {
		printUsage()
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	patches, err := collectPatches(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if len(patches) == 0 {
		fmt.Fprintln(os.Stderr, "error: no patch files found")
		return 2
	}

	if extract {
		if err := applyAll(logger, patches, output, verifyCRC); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := inspectAll(logger, patches, verifyCRC, table); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: zipatch [flags] <patch-file-or-directory>...\n\nFlags:\n")
	pflag.PrintDefaults()
}

// collectPatches expands the argument list into a lexically sorted set
// of patch files. Directories are walked recursively for *.patch.
func collectPatches(args []string) ([]string, error) {
	var patches []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			patches = append(patches, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".patch") {
				patches = append(patches, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(patches)
	return patches, nil
}

// applyAll extracts each patch in order under the output root. Order
// matters: later patches depend on the filesystem state earlier ones
// produce, so extraction is strictly sequential.
func applyAll(logger *slog.Logger, patches []string, output string, verifyCRC bool) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	for _, patch := range patches {
		logger.Info("applying patch", "file", patch)
		p := zipatch.New(output,
			zipatch.WithLogger(logger.With("file", filepath.Base(patch))),
			zipatch.WithValidateCRC(verifyCRC),
		)
		if err := p.ApplyFile(patch); err != nil {
			return fmt.Errorf("%s: %w", patch, err)
		}
	}
	return nil
}

// report is the parse-only summary of one patch file.
type report struct {
	file    string
	blocks  int
	entries []entryRow
	err     error
}

type entryRow struct {
	path   string
	mode   string
	chunks int
	size   uint64
}

// inspectAll parses each patch without touching the filesystem.
// Independent files share no state, so they are inspected
// concurrently; results print in input order.
func inspectAll(logger *slog.Logger, patches []string, verifyCRC, table bool) error {
	reports := make([]report, len(patches))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, patch := range patches {
		i, patch := i, patch
		g.Go(func() error {
			reports[i] = inspect(logger, patch, verifyCRC)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed bool
	for _, r := range reports {
		if r.err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.file, r.err)
			continue
		}
		fmt.Printf("%s: %d blocks, %d entries\n", r.file, r.blocks, len(r.entries))
		if table {
			printEntryTable(r.entries)
		}
	}
	if failed {
		return fmt.Errorf("some patch files failed to parse")
	}
	return nil
}

func inspect(logger *slog.Logger, patch string, verifyCRC bool) report {
	r := report{file: patch}
	p := zipatch.New("",
		zipatch.WithExtract(false),
		zipatch.WithLogger(logger.With("file", filepath.Base(patch))),
		zipatch.WithValidateCRC(verifyCRC),
		zipatch.WithOnBlock(func(event zipatch.BlockEvent) {
			r.blocks++
			if event.Entry == nil {
				return
			}
			var size uint64
			for _, c := range event.Entry.Chunks {
				size += uint64(len(c.Data))
			}
			r.entries = append(r.entries, entryRow{
				path:   event.Entry.Path,
				mode:   event.Entry.Mode().String(),
				chunks: len(event.Entry.Chunks),
				size:   size,
			})
		}),
	)
	r.err = p.ApplyFile(patch)
	return r
}

func printEntryTable(entries []entryRow) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "  PATH\tMODE\tCHUNKS\tBYTES")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\n", e.path, e.mode, e.chunks, e.size)
	}
	tw.Flush()
}
