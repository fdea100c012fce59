package main

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "TANGVIEW_"

func envVars(name string) []string {
	return []string{EnvVarPrefix + name}
}

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		EnvVars: envVars("CONFIG"),
		Usage:   "Path to the config file (default: ./.tangview.yaml, then the user config dir)",
	}
	GroupLevelFlag = &cli.IntFlag{
		Name:    "group-level",
		EnvVars: envVars("GROUP_LEVEL"),
		Usage:   "Number of describe-block titles expanded tests are grouped by",
	}
	PrecisionFlag = &cli.IntFlag{
		Name:    "precision",
		EnvVars: envVars("PRECISION"),
		Usage:   "Decimal places of percentages",
	}
	NoColorFlag = &cli.BoolFlag{
		Name:    "no-color",
		EnvVars: []string{"NO_COLOR", EnvVarPrefix + "NO_COLOR"},
		Usage:   "Disable styled output",
	}
	CallbackFlag = &cli.StringFlag{
		Name:    "callback",
		EnvVars: envVars("CALLBACK"),
		Usage:   "Name of the function the result script calls",
	}
	SlowThresholdFlag = &cli.IntFlag{
		Name:    "slow-threshold",
		EnvVars: envVars("SLOW_THRESHOLD_MS"),
		Usage:   "Files slower than this many milliseconds are listed as slow",
	}
	RecomputeTimingFlag = &cli.BoolFlag{
		Name:    "recompute-timing",
		EnvVars: envVars("RECOMPUTE_TIMING"),
		Usage:   "Derive file run times from the sum of their test durations",
	}
	DebugFlag = &cli.BoolFlag{
		Name:    "debug",
		EnvVars: envVars("DEBUG"),
		Usage:   "Enable debug logging",
	}
	NoTTYFlag = &cli.BoolFlag{
		Name:  "notty",
		Usage: "Don't use the TUI, print the summary to stdout",
	}
	ListenFlag = &cli.StringFlag{
		Name:    "listen",
		EnvVars: envVars("LISTEN"),
		Usage:   "Address to serve on",
	}
	RefreshFlag = &cli.DurationFlag{
		Name:    "refresh",
		EnvVars: envVars("REFRESH"),
		Usage:   "Reload the report at this interval (e.g. '30s'). 0 loads it once.",
	}
)

var globalFlags = []cli.Flag{
	ConfigFlag,
	GroupLevelFlag,
	PrecisionFlag,
	NoColorFlag,
	CallbackFlag,
	SlowThresholdFlag,
	RecomputeTimingFlag,
	DebugFlag,
}
