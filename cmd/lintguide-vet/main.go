package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/tnqn/code-review-comments/internal/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
