//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const integrationDir = "tests/integration"

// Test groups test targets (all, unit, integration).
type Test mg.Namespace

// All runs all tests (unit and integration).
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the package tests under cmd/, internal/ and pkg/. The
// subprocess suite in tests/integration is left to Integration.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/"+integrationDir) {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Integration checks that the userstore binary builds, then runs the
// subprocess suite. The suite builds its own copy, so results are never
// cached against a stale binary.
func (Test) Integration() error {
	if _, err := os.Stat(integrationDir); os.IsNotExist(err) {
		fmt.Printf("No integration test directory found (%s).\n", integrationDir)
		return nil
	}
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "-v", "-count=1", "./"+integrationDir+"/...")
}
