//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with anima.toml and writes the last frame to the configured output.
func (Run) Demo() error {
	mg.Deps(Build.Demo)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/anima-ui", withArgs("-config", "anima.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
