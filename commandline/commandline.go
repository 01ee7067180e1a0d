// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"fmt"
	"strconv"

	"qmap/config"
)

var (
	debug bool

	pointEntities = boolInt{false, 0}

	basedir  string
	conf     string
	format   string
	game     string
	logFile  string
	logLevel string
	output   string
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

func init() {
	flag.BoolVar(&debug, "debug", false, "enable debug logging")

	flag.Var(&pointEntities, "pointentities", "list point entities, optional maximum number per map")

	flag.StringVar(&basedir, "basedir", "", "directory containing id1")
	flag.StringVar(&conf, "config", "", "path to a yaml config file")
	flag.StringVar(&format, "format", "", "export format: proto, json or yaml")
	flag.StringVar(&game, "game", "", "mod directory layered over id1")
	flag.StringVar(&logFile, "logfile", "", "also log to this file")
	flag.StringVar(&logLevel, "loglevel", "", "debug, info, warn or error")
	flag.StringVar(&output, "o", "", "export directory, empty disables export")
}

func ConfigPath() string {
	return conf
}

func BaseDirectory() string {
	return basedir
}

func Game() string {
	return game
}

func Format() string {
	return format
}

func Output() string {
	return output
}

func Debug() bool {
	return debug
}

// PointEntities reports whether point entities should be listed and the
// maximum number to list, 0 is unlimited.
func PointEntities() (bool, int) {
	return pointEntities.set, pointEntities.num
}

// Apply overrides cfg with the flags given on the command line.
func Apply(cfg *config.Config) {
	if basedir != "" {
		cfg.Data.BaseDir = basedir
	}
	if game != "" {
		cfg.Data.Game = game
	}
	if format != "" {
		cfg.Export.Format = format
	}
	if output != "" {
		cfg.Export.Output = output
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if logFile != "" {
		cfg.Logging.LogFile = logFile
	}
	if given("pointentities") {
		cfg.Diagnostics.PointEntities = pointEntities.set
	}
}

// given reports whether the flag was set on the command line, even to its
// default value.
func given(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
