//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Demo() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/anima-ui", "."), withStream()); err != nil {
		return err
	}
	return nil
}
