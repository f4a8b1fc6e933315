// Command rnx2crx compresses RINEX observation files into Compact RINEX.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hatanaka-gnss/crinex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "rnx2crx",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		Copyright: "(c) 2026 hatanaka-gnss",
		HelpName:  "rnx2crx",
		Usage:     "compress a RINEX observation file into Compact RINEX (Hatanaka) format",
		ArgsUsage: "[rinex-file ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdout", Aliases: []string{"c"}, Usage: "write to stdout and keep the input file"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite an existing output file"},
			&cli.BoolFlag{Name: "skip", Aliases: []string{"s"}, Usage: "warn and recover on malformed epochs instead of aborting"},
			&cli.IntFlag{Name: "reinit", Aliases: []string{"e"}, Usage: "re-initialize every N epochs (0 disables)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	opts := crinex.Options{
		Skip:           c.Bool("skip"),
		ReinitInterval: c.Int("reinit"),
		Logger:         log.New(os.Stderr, "rnx2crx: ", 0),
	}

	args := c.Args().Slice()
	if len(args) == 0 {
		status, err := crinex.Compress(os.Stdin, os.Stdout, opts)
		return exit(status, err)
	}

	worst := crinex.ExitSuccess
	for _, path := range args {
		status, err := compressFile(path, c.Bool("stdout"), c.Bool("force"), opts)
		if err != nil {
			return err
		}
		if status > worst {
			worst = status
		}
	}
	return exit(worst, nil)
}

func compressFile(path string, toStdout, force bool, opts crinex.Options) (crinex.ExitStatus, error) {
	in, err := os.Open(path)
	if err != nil {
		return crinex.ExitError, fmt.Errorf("rnx2crx: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	var outFile *os.File
	if !toStdout {
		outPath := crxFileName(path)
		if !force {
			if _, err := os.Stat(outPath); err == nil {
				return crinex.ExitError, fmt.Errorf("rnx2crx: %s already exists, use -f to overwrite", outPath)
			}
		}
		outFile, err = os.Create(outPath)
		if err != nil {
			return crinex.ExitError, fmt.Errorf("rnx2crx: %w", err)
		}
		defer outFile.Close()
		out = outFile
	}

	status, err := crinex.Compress(in, out, opts)
	if err != nil {
		return status, fmt.Errorf("rnx2crx: %s: %w", path, err)
	}
	if !toStdout {
		os.Remove(path)
	}
	return status, nil
}

// crxFileName renames a RINEX observation filename to its Compact RINEX
// counterpart: the "o"/"O" observation-file letter in the classic short
// filename's extension becomes "d"/"D", and a long-format ".rnx" extension
// becomes ".crx".
func crxFileName(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	switch {
	case len(ext) == 4 && (ext[3] == 'o' || ext[3] == 'O'):
		b := []byte(ext)
		if ext[3] == 'o' {
			b[3] = 'd'
		} else {
			b[3] = 'D'
		}
		return filepath.Join(dir, strings.TrimSuffix(base, ext)+string(b))
	case strings.EqualFold(ext, ".rnx"):
		return filepath.Join(dir, strings.TrimSuffix(base, ext)+".crx")
	default:
		return path + ".crx"
	}
}

func exit(status crinex.ExitStatus, err error) error {
	if err != nil {
		return cli.Exit(err.Error(), int(crinex.ExitError))
	}
	if status != crinex.ExitSuccess {
		return cli.Exit("", int(status))
	}
	return nil
}
