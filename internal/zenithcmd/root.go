// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package zenithcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags, mirroring
// wavebase.WaveVersion's role as the single source of truth for the
// --version flag.
var Version = "v0.1.0-dev"

// ExitCode is the taxonomy assigned to process exit status.
type ExitCode int

const (
	ExitOK          ExitCode = 0
	ExitBadArgs     ExitCode = 1
	ExitProbeBoot   ExitCode = 2
	ExitInterrupted ExitCode = 130
)

// Run parses args, resolves the layered Config (defaults -> config file
// -> flags), and invokes start with it. It never itself starts the TUI,
// keeping cmd/zenith/main.go the single place that wires probes and
// bubbletea together.
func Run(args []string, start func(Config) error) int {
	cfg := Default()
	var showVersion bool

	root := &cobra.Command{
		Use:           "zenith",
		Short:         "An interactive terminal dashboard for system resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "zenith %s\n", Version)
				return nil
			}
			cfg.HomeDir = ExpandHomeDir(cfg.HomeDir)
			merged, err := LoadConfigFile(cfg)
			if err != nil {
				return err
			}
			mergeFlagOverrides(cmd, &merged, cfg)
			return start(merged)
		},
	}

	flags := root.Flags()
	flags.IntVarP(&cfg.CPUHeight, "cpu-height", "c", DefaultCPUHeight, "min %height CPU/mem section (0 hides)")
	flags.IntVarP(&cfg.NetHeight, "net-height", "n", DefaultNetHeight, "min %height network")
	flags.IntVarP(&cfg.DiskHeight, "disk-height", "d", DefaultDiskHeight, "min %height disk")
	flags.IntVarP(&cfg.ProcessHeight, "process-height", "p", DefaultProcessHeight, "min %height process table")
	flags.IntVarP(&cfg.GraphicsHeight, "graphics-height", "g", DefaultGraphicsHeight, "min %height GPU (when GPU enabled)")
	flags.IntVarP(&cfg.RefreshRateMs, "refresh-rate", "r", DefaultRefreshRateMs, "tick period in ms")
	flags.StringVar(&cfg.HomeDir, "db", DefaultHomeDirName, "history directory")
	flags.BoolVar(&cfg.DisableHistory, "disable-history", false, "skip load and writes")
	flags.BoolVarP(&showVersion, "version", "V", false, "print version, exit 0")
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zenith: "+err.Error())
		return int(ExitBadArgs)
	}
	return int(ExitOK)
}

// mergeFlagOverrides re-applies any flag the user explicitly set on top
// of the config-file-merged result, so an explicit `-r 500` always wins
// over a stale config.json value regardless of flag/file ordering.
func mergeFlagOverrides(cmd *cobra.Command, merged *Config, flagCfg Config) {
	f := cmd.Flags()
	if f.Changed("cpu-height") {
		merged.CPUHeight = flagCfg.CPUHeight
	}
	if f.Changed("net-height") {
		merged.NetHeight = flagCfg.NetHeight
	}
	if f.Changed("disk-height") {
		merged.DiskHeight = flagCfg.DiskHeight
	}
	if f.Changed("process-height") {
		merged.ProcessHeight = flagCfg.ProcessHeight
	}
	if f.Changed("graphics-height") {
		merged.GraphicsHeight = flagCfg.GraphicsHeight
	}
	if f.Changed("refresh-rate") {
		merged.RefreshRateMs = flagCfg.RefreshRateMs
	}
	if f.Changed("db") {
		merged.HomeDir = ExpandHomeDir(flagCfg.HomeDir)
	}
	if f.Changed("disable-history") {
		merged.DisableHistory = flagCfg.DisableHistory
	}
}
