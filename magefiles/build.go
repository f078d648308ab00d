//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Shaders compiles the GLSL sources under assets/shaders to the SPIR-V
// binaries the asset manager serves. Requires glslc on PATH.
func (Build) Shaders() error {
	shaders := [][2]string{
		{"assets/shaders/position_color.vert", "assets/shaders/position_color.vert.spv"},
		{"assets/shaders/position_color.frag", "assets/shaders/position_color.frag.spv"},
	}
	for _, s := range shaders {
		if _, err := executeCmd("glslc", withArgs(s[0], "-o", s[1]), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Binary compiles shaders and builds the testbed executable.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/nucleo", "."), withStream()); err != nil {
		return err
	}
	return nil
}
