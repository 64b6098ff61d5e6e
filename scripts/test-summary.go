//go:build ignore

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <rdf-canon-tests-dir>\n", os.Args[0])
		os.Exit(1)
	}
	os.Setenv("RDF_CANON_TESTS_DIR", os.Args[1])

	fmt.Println("rdf-canon Conformance Test Summary")
	fmt.Println("=" + strings.Repeat("=", 60))

	cmd := exec.Command("go", "test", "./rdf", "-run", "TestW3CCanonicalization", "-v", "-count=1")
	output, _ := cmd.CombinedOutput()
	outputStr := string(output)

	pass := strings.Count(outputStr, "    --- PASS:")
	fail := strings.Count(outputStr, "    --- FAIL:")
	skip := strings.Count(outputStr, "    --- SKIP:")
	total := pass + fail

	var rate float64
	if total > 0 {
		rate = 100.0 * float64(pass) / float64(total)
	}
	fmt.Printf("PASS=%4d  FAIL=%4d  SKIP=%4d  Pass Rate=%.1f%%\n", pass, fail, skip, rate)

	if fail > 0 {
		fmt.Println()
		for _, line := range strings.Split(outputStr, "\n") {
			if strings.Contains(line, "--- FAIL:") {
				fmt.Println(line)
			}
		}
		os.Exit(1)
	}
}
