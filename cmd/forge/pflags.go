package main

import (
	"github.com/spf13/pflag"

	"github.com/outlaybuild/forge/internal/base"
)

// pflagVisitor adapts a pflag.FlagSet to base.FlagVisitor, letting
// exec.Flags/driver.Flags declare their knobs once and bind them to cobra's
// flag set here, the one place this module actually depends on a concrete
// CLI library.
type pflagVisitor struct {
	set *pflag.FlagSet
}

func (v pflagVisitor) BoolVar(name, description string, value *bool) {
	v.set.BoolVar(value, name, *value, description)
}

func (v pflagVisitor) IntVar(name, description string, value *int) {
	v.set.IntVar(value, name, *value, description)
}

func (v pflagVisitor) Float64Var(name, description string, value *float64) {
	v.set.Float64Var(value, name, *value, description)
}

func (v pflagVisitor) StringVar(name, description string, value *string) {
	v.set.StringVar(value, name, *value, description)
}

var _ base.FlagVisitor = pflagVisitor{}
