//go:build ignore

package main

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	suiteURL    = "https://github.com/w3c/rdf-canon/archive/refs/heads/main.zip"
	suiteSubdir = "tests"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-directory>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDownloads the W3C rdf-canon test suite (manifest.jsonld and rdfc10/).\n")
		fmt.Fprintf(os.Stderr, "\nExample: %s ./rdf-canon-tests\n", os.Args[0])
		os.Exit(1)
	}

	outputDir := os.Args[1]
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Downloading rdf-canon tests to: %s\n", outputDir)
	n, err := download(outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Extracted %d files\n", n)
	fmt.Printf("Set RDF_CANON_TESTS_DIR=%s to run conformance tests.\n", outputDir)
}

func download(outputDir string) (int, error) {
	tmp, err := os.CreateTemp("", "rdf-canon-*.zip")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	fmt.Printf("  Fetching from %s...\n", suiteURL)
	resp, err := http.Get(suiteURL)
	if err != nil {
		return 0, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return 0, fmt.Errorf("failed to save download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return extract(tmp.Name(), outputDir)
}

// extract copies <repo>-main/tests/** into outputDir, dropping that prefix.
func extract(zipFile, outputDir string) (int, error) {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		parts := strings.SplitN(f.Name, "/", 3)
		if len(parts) < 3 || parts[1] != suiteSubdir {
			continue
		}
		rel := filepath.FromSlash(parts[2])
		if strings.HasPrefix(filepath.Clean(rel), "..") {
			return count, fmt.Errorf("refusing to extract %s", f.Name)
		}
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return count, err
		}
		if err := copyFile(f, dest); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func copyFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
