// Command crx2rnx decompresses Compact RINEX files back into RINEX
// observation files.
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
		Name:      "crx2rnx",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		Copyright: "(c) 2026 hatanaka-gnss",
		HelpName:  "crx2rnx",
		Usage:     "decompress a Compact RINEX (Hatanaka) file back into RINEX",
		ArgsUsage: "[crinex-file ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdout", Aliases: []string{"c"}, Usage: "write to stdout and keep the input file"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite an existing output file"},
			&cli.BoolFlag{Name: "skip", Aliases: []string{"s"}, Usage: "warn and recover on malformed epochs instead of aborting"},
			&cli.BoolFlag{Name: "output_overflow", Usage: "warn instead of aborting when an arc overflows its column width"},
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
		OutputOverflow: c.Bool("output_overflow"),
		Logger:         log.New(os.Stderr, "crx2rnx: ", 0),
	}

	args := c.Args().Slice()
	if len(args) == 0 {
		status, err := crinex.Decompress(os.Stdin, os.Stdout, opts)
		return exit(status, err)
	}

	worst := crinex.ExitSuccess
	for _, path := range args {
		status, err := decompressFile(path, c.Bool("stdout"), c.Bool("force"), opts)
		if err != nil {
			return err
		}
		if status > worst {
			worst = status
		}
	}
	return exit(worst, nil)
}

func decompressFile(path string, toStdout, force bool, opts crinex.Options) (crinex.ExitStatus, error) {
	in, err := os.Open(path)
	if err != nil {
		return crinex.ExitError, fmt.Errorf("crx2rnx: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	var outFile *os.File
	if !toStdout {
		outPath := rnxFileName(path)
		if !force {
			if _, err := os.Stat(outPath); err == nil {
				return crinex.ExitError, fmt.Errorf("crx2rnx: %s already exists, use -f to overwrite", outPath)
			}
		}
		outFile, err = os.Create(outPath)
		if err != nil {
			return crinex.ExitError, fmt.Errorf("crx2rnx: %w", err)
		}
		defer outFile.Close()
		out = outFile
	}

	status, err := crinex.Decompress(in, out, opts)
	if err != nil {
		return status, fmt.Errorf("crx2rnx: %s: %w", path, err)
	}
	if !toStdout {
		os.Remove(path)
	}
	return status, nil
}

// rnxFileName is the inverse of rnx2crx's crxFileName: the "d"/"D" letter in
// a classic short filename's extension becomes "o"/"O", and ".crx" becomes
// ".rnx".
func rnxFileName(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	switch {
	case len(ext) == 4 && (ext[3] == 'd' || ext[3] == 'D'):
		b := []byte(ext)
		if ext[3] == 'd' {
			b[3] = 'o'
		} else {
			b[3] = 'O'
		}
		return filepath.Join(dir, strings.TrimSuffix(base, ext)+string(b))
	case strings.EqualFold(ext, ".crx"):
		return filepath.Join(dir, strings.TrimSuffix(base, ext)+".rnx")
	default:
		return path + ".rnx"
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
