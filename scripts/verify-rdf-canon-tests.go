//go:build ignore

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type entry struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Result string `json:"result"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <rdf-canon-tests-directory>\n", os.Args[0])
		os.Exit(1)
	}
	baseDir := os.Args[1]

	data, err := os.ReadFile(filepath.Join(baseDir, "manifest.jsonld"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	var manifest struct {
		Entries []entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		fmt.Fprintf(os.Stderr, "❌ invalid manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("rdf-canon Test Suite Verification")
	fmt.Println("=" + strings.Repeat("=", 50))

	byType := make(map[string]int)
	missing := 0
	for _, e := range manifest.Entries {
		kind := e.Type
		if i := strings.LastIndex(kind, ":"); i >= 0 {
			kind = kind[i+1:]
		}
		byType[kind]++
		for _, rel := range []string{e.Action, e.Result} {
			if rel == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(baseDir, rel)); err != nil {
				fmt.Printf("  ❌ %s: missing %s\n", e.ID, rel)
				missing++
			}
		}
	}

	for kind, n := range byType {
		fmt.Printf("  %-24s %4d\n", kind, n)
	}
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Printf("Total entries: %d\n", len(manifest.Entries))
	if missing > 0 {
		fmt.Printf("⚠️  %d referenced files are missing.\n", missing)
		os.Exit(1)
	}
	fmt.Println("✓ All referenced files present!")
}
