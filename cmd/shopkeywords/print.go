package main

import (
	"fmt"
	"io"
	"strconv"

	"shopkeywords-engine/internal/rank"
)

func formatResult(r rank.Result, width int) string {
	return fmt.Sprintf("%-*s (+%s)", width, r.Term, strconv.FormatFloat(r.Score, 'f', -1, 64))
}

func printResults(w io.Writer, results []rank.Result, width int) {
	for _, r := range results {
		fmt.Fprintln(w, formatResult(r, width))
	}
}
