// Command linter runs the project's static checks.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"

	"github.com/MikhailRaia/shortlink/cmd/linter/analyzer"
)

func main() {
	multichecker.Main(
		analyzer.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
	)
}
