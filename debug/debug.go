package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Load     bool
	Guard    bool
	Bridge   bool
	Annotate bool
	Dump     bool
	Filter   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Load = boolEnv("YQ_DEBUG_LOAD")
	d.Guard = boolEnv("YQ_DEBUG_GUARD")
	d.Bridge = boolEnv("YQ_DEBUG_BRIDGE")
	d.Annotate = boolEnv("YQ_DEBUG_ANNOTATE")
	d.Dump = boolEnv("YQ_DEBUG_DUMP")
	d.Filter = boolEnv("YQ_DEBUG_FILTER")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Load() bool {
	return d.Load
}
func Guard() bool {
	return d.Guard
}
func Bridge() bool {
	return d.Bridge
}
func Annotate() bool {
	return d.Annotate
}
func Dump() bool {
	return d.Dump
}
func Filter() bool {
	return d.Filter
}
