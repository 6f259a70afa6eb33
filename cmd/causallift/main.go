// Command causallift estimates uplift from CSV files and reports the impact
// of treating the samples with the highest estimated CATE.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
