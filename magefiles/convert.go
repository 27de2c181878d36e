//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// samplesDir holds spreadsheets converted by the Convert target.
const samplesDir = "samples"

// Convert builds the CLI and converts every spreadsheet in samples/ into
// output/.
func Convert() error {
	mg.Deps(Build)

	var inputs []string
	for _, pattern := range []string{"*.xlsx", "*.xlsm", "*.csv"} {
		matches, err := filepath.Glob(filepath.Join(samplesDir, pattern))
		if err != nil {
			return err
		}
		inputs = append(inputs, matches...)
	}
	if len(inputs) == 0 {
		fmt.Printf("[convert] No spreadsheets in %s/.\n", samplesDir)
		return nil
	}
	sort.Strings(inputs)

	args := append([]string{"convert", "-o", "output"}, inputs...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Inspect prints the normalized rows of the file named by $FILE.
func Inspect() error {
	mg.Deps(Build)

	file := os.Getenv("FILE")
	if file == "" {
		return fmt.Errorf("set FILE to the spreadsheet to inspect")
	}
	return sh.RunV(filepath.Join(binDir, binName), "inspect", file)
}
