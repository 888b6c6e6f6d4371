// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package zenithcmd is the CLI & Config Layer: cobra/pflag flag parsing,
// an optional JSON config file decoded with mapstructure, and a
// fsnotify watcher that live-reloads section heights without a restart.
// Grounded on cmd/wsh/cmd/wshcmd-root.go's flag registration and
// pkg/wconfig/filewatcher.go's watch-and-reload loop.
package zenithcmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

const (
	DefaultCPUHeight     = 17
	DefaultNetHeight     = 17
	DefaultDiskHeight    = 17
	DefaultProcessHeight = 32
	DefaultGraphicsHeight = 17
	DefaultRefreshRateMs = 2000
	DefaultHomeDirName   = "~/.zenith"
	HomeVarName          = "ZENITH_HOME"
)

// Config is the fully-resolved set of tunables the CLI/config-file/
// defaults layering produces, handed to the rest of the program once at
// startup (and re-delivered on a live file-watch reload for the height
// fields only).
type Config struct {
	CPUHeight       int  `json:"cpuHeight" mapstructure:"cpuHeight"`
	NetHeight       int  `json:"netHeight" mapstructure:"netHeight"`
	DiskHeight      int  `json:"diskHeight" mapstructure:"diskHeight"`
	ProcessHeight   int  `json:"processHeight" mapstructure:"processHeight"`
	GraphicsHeight  int  `json:"graphicsHeight" mapstructure:"graphicsHeight"`
	RefreshRateMs   int  `json:"refreshRateMs" mapstructure:"refreshRateMs"`
	HomeDir         string `json:"-" mapstructure:"-"`
	DisableHistory  bool `json:"-" mapstructure:"-"`
}

// Default returns the hard-coded CLI defaults.
func Default() Config {
	return Config{
		CPUHeight:      DefaultCPUHeight,
		NetHeight:      DefaultNetHeight,
		DiskHeight:     DefaultDiskHeight,
		ProcessHeight:  DefaultProcessHeight,
		GraphicsHeight: DefaultGraphicsHeight,
		RefreshRateMs:  DefaultRefreshRateMs,
		HomeDir:        ExpandHomeDir(DefaultHomeDirName),
	}
}

// ExpandHomeDir expands a leading "~" the way wavebase.go does, without
// depending on the shell to have done it already.
func ExpandHomeDir(pathStr string) string {
	if pathStr != "~" && !strings.HasPrefix(pathStr, "~/") {
		return pathStr
	}
	home := os.Getenv("HOME")
	if home == "" {
		return pathStr
	}
	if pathStr == "~" {
		return home
	}
	return path.Join(home, pathStr[2:])
}

// LoadDotEnv loads a .env file (if present) into the process environment
// before flag parsing. Missing file is not an error.
func LoadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[zenithcmd] .env load failed: %v\n", err)
	}
}

// configFilePath returns "<home>/config.json".
func configFilePath(homeDir string) string {
	return path.Join(homeDir, "config.json")
}

// LoadConfigFile reads "<home>/config.json" if present and decodes it
// over base using mapstructure with "json" tags, the same pattern
// pkg/util/utilfn/marshal.go's DoMapStructure uses. A missing file
// returns base unchanged; a malformed file is a ConfigInvalid error.
func LoadConfigFile(base Config) (Config, error) {
	data, err := os.ReadFile(configFilePath(base.HomeDir))
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("reading config file: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("parsing config file: %w", err)
	}
	dconfig := &mapstructure.DecoderConfig{Result: &base, TagName: "json"}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return base, err
	}
	if err := decoder.Decode(raw); err != nil {
		return base, fmt.Errorf("decoding config file: %w", err)
	}
	return base, nil
}

// HeightWatcher live-reloads the section-height fields from config.json
// on write, grounded on pkg/wconfig/filewatcher.go's Watcher: a single
// fsnotify.Watcher on one file, broadcasting decoded updates to
// subscribers instead of a web eventbus.
type HeightWatcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	path      string
	listeners []func(Config)
	current   Config
}

// NewHeightWatcher starts watching cfg's backing config.json (creating
// the home dir if needed) and returns a watcher whose OnChange callbacks
// fire with the freshly-decoded Config after each write. A failure to
// start the underlying fsnotify watcher is logged and yields a watcher
// that simply never fires (degraded, not fatal).
func NewHeightWatcher(cfg Config) *HeightWatcher {
	hw := &HeightWatcher{path: configFilePath(cfg.HomeDir), current: cfg}
	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		log.Printf("[zenithcmd] could not create home dir: %v\n", err)
		return hw
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[zenithcmd] failed to create config watcher: %v\n", err)
		return hw
	}
	hw.watcher = w
	if err := w.Add(hw.path); err != nil {
		// the file may not exist yet; watch the directory instead so a
		// later `config.json` create is still observed.
		if err := w.Add(cfg.HomeDir); err != nil {
			log.Printf("[zenithcmd] failed to watch config path: %v\n", err)
		}
	}
	return hw
}

// OnChange registers a callback invoked with the reloaded Config.
func (hw *HeightWatcher) OnChange(fn func(Config)) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.listeners = append(hw.listeners, fn)
}

// Run processes fsnotify events until the watcher is closed; intended to
// run on its own goroutine for the process lifetime.
func (hw *HeightWatcher) Run() {
	if hw.watcher == nil {
		return
	}
	for {
		select {
		case event, ok := <-hw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != hw.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			hw.reload()
		case err, ok := <-hw.watcher.Errors:
			if !ok {
				return
			}
			log.Println("[zenithcmd] config watcher error:", err)
		}
	}
}

func (hw *HeightWatcher) reload() {
	hw.mu.Lock()
	cur := hw.current
	hw.mu.Unlock()

	next, err := LoadConfigFile(cur)
	if err != nil {
		log.Printf("[zenithcmd] config reload failed, keeping previous: %v\n", err)
		return
	}
	hw.mu.Lock()
	hw.current = next
	listeners := append([]func(Config){}, hw.listeners...)
	hw.mu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
}

// Close stops the underlying fsnotify watcher.
func (hw *HeightWatcher) Close() {
	if hw.watcher != nil {
		hw.watcher.Close()
	}
}
