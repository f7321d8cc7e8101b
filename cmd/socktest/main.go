/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command socktest scans its own directory for sibling test binaries
// (test-* on POSIX, test-*.exe on Windows), runs each to completion with
// inherited stdio, and aggregates their exit codes.
package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rampantpixels/network-lib/socket"
)

func main() {
	logger := socket.NewDiscardLogger()
	if os.Getenv("SOCKTEST_VERBOSE") != "" {
		logger = socket.NewLogrusLogger(nil, "socktest")
	}

	os.Exit(run(logger))
}

func run(logger socket.Logger) int {
	self, err := os.Executable()
	if err != nil {
		logger.Error("socktest: resolving own path: %v", err)
		return -1
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		logger.Error("socktest: resolving symlinks for %s: %v", self, err)
		return -1
	}

	dir := filepath.Dir(self)
	binaries, err := discover(dir, filepath.Base(self))
	if err != nil {
		logger.Error("socktest: scanning %s: %v", dir, err)
		return -1
	}

	if len(binaries) == 0 {
		logger.Warn("socktest: no test-* binaries found in %s", dir)
		return 0
	}

	failed := false
	for _, bin := range binaries {
		logger.Info("socktest: running %s", filepath.Base(bin))

		cmd := exec.Command(bin)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			logger.Warn("socktest: %s failed: %v", filepath.Base(bin), err)
			failed = true
		}
	}

	if failed {
		return -1
	}
	return 0
}

// discover returns every file in dir matching the test-* naming
// convention, excluding self, sorted for deterministic run order.
func discover(dir, selfName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == selfName {
			continue
		}
		if !strings.HasPrefix(name, "test-") {
			continue
		}
		if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}

	sort.Strings(out)
	return out, nil
}
