//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var binaries = []string{"retarget", "inspect"}

// Tidies modules and builds every command into bin/.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	for _, name := range binaries {
		out := filepath.Join("bin", name)
		if _, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/"+name), withEnv("CGO_ENABLED=0"), withStream()); err != nil {
			return err
		}
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./internal/..."), withStream())
	return err
}

// Runs go vet and the unit tests with the race detector.
func (Test) Race() error {
	mg.Deps(Test.Vet)
	_, err := executeCmd("go", withArgs("test", "-race", "./internal/..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

func (Test) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."))
	return err
}
