//go:build mage

// Package main provides build targets for the lector project using Mage.
//
// Usage:
//
//	mage build      Compile the lector binary to bin/
//	mage test       Run all tests
//	mage testUnit   Run tests of packages that do not open a database
//	mage testRace   Run all tests with the race detector
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install lector to GOPATH/bin
//	mage stats      Print package and test counts
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "lector"
	binaryDir  = "bin"
	cmdDir     = "./cmd/lector"
	versionVar = "github.com/mesh-intelligence/lector/pkg/lector.Version"
)

// ldflags stamps the version from LECTOR_VERSION or the current git tag.
func ldflags() string {
	version := os.Getenv("LECTOR_VERSION")
	if version == "" {
		if out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil {
			version = strings.TrimSpace(out)
		}
	}
	if version == "" {
		return ""
	}
	return fmt.Sprintf("-X %s=%s", versionVar, version)
}

// Build compiles the lector binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if lf := ldflags(); lf != "" {
		args = append(args, "-ldflags", lf)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestUnit runs the tests of packages that do not open a database.
func TestUnit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg == "" || strings.HasSuffix(pkg, "/magefiles") {
			continue
		}
		if isStoreBacked(pkg) {
			continue
		}
		unitPkgs = append(unitPkgs, pkg)
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	return sh.RunV(binGo, append([]string{"test"}, unitPkgs...)...)
}

// storeBacked lists package suffixes whose tests attach a SQLite store.
var storeBacked = []string{
	"/internal/sqlite",
	"/internal/scan",
	"/internal/export",
	"/internal/catalogsync",
	"/cmd/lector",
}

func isStoreBacked(pkg string) bool {
	for _, s := range storeBacked {
		if strings.HasSuffix(pkg, s) {
			return true
		}
	}
	return false
}

// TestRace runs all tests with the race detector.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints a JSON record of Go package, file and test function counts.
func Stats() error {
	record := map[string]int{}
	pkgs := map[string]bool{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		pkgs[filepath.Dir(path)] = true
		if !strings.HasSuffix(path, "_test.go") {
			record["go_files"]++
			return nil
		}
		record["go_test_files"]++
		n, countErr := countTestFuncs(path)
		if countErr == nil {
			record["go_test_funcs"] += n
		}
		return nil
	})
	if err != nil {
		return err
	}
	record["go_packages"] = len(pkgs)

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countTestFuncs(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "func Test") {
			count++
		}
	}
	return count, scanner.Err()
}
