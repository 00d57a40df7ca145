package battery

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// sysfsRoot is the power-supply class directory. Tests point it at a tempdir.
var sysfsRoot = "/sys/class/power_supply"

const (
	statusDischarging = "Discharging"
	statusFull        = "Full"
)

// Discover enumerates the power-supply tree and returns the names of all
// entries that qualify as batteries: type is exactly "Battery" and the
// device exposes a usable capacity signal. A missing or unreadable tree
// yields an empty result, not an error; desktop systems simply have no
// batteries.
func Discover() []string {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if isBattery(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names
}

// Validate re-applies the battery predicate to an explicitly supplied name
// list (e.g. from config) and returns the index of the first entry that is
// not a battery, or -1 if all pass.
func Validate(names []string) int {
	for i, name := range names {
		if !isBattery(name) {
			return i
		}
	}
	return -1
}

func isBattery(name string) bool {
	return isTypeBattery(name) && hasCapacitySignal(name)
}

func isTypeBattery(name string) bool {
	data, err := os.ReadFile(filepath.Join(sysfsRoot, name, "type"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "Battery"
}

// hasCapacitySignal reports whether the device can answer "how charged".
// A charge or energy now/full pair qualifies by presence alone; a bare
// capacity file must hold a non-negative percentage.
func hasCapacitySignal(name string) bool {
	nowAttr, _ := resolveAttributes(name)
	if nowAttr != attrCapacity {
		return true
	}
	v, err := readInt(filepath.Join(sysfsRoot, name, attrCapacity))
	return err == nil && v >= 0
}

const (
	attrChargeNow  = "charge_now"
	attrChargeFull = "charge_full"
	attrEnergyNow  = "energy_now"
	attrEnergyFull = "energy_full"
	attrCapacity   = "capacity"
)

// resolveAttributes picks the attribute pair representing current and full
// charge for a device, probing charge_now, then energy_now, then falling
// back to the capacity percentage (empty fullAttr, full treated as 100).
//
// The caller probes only the aggregate's first battery and applies the
// result to all of them; machines with mixed charge- and energy-reporting
// batteries are not handled.
func resolveAttributes(name string) (nowAttr, fullAttr string) {
	if _, err := os.Stat(filepath.Join(sysfsRoot, name, attrChargeNow)); err == nil {
		return attrChargeNow, attrChargeFull
	}
	if _, err := os.Stat(filepath.Join(sysfsRoot, name, attrEnergyNow)); err == nil {
		return attrEnergyNow, attrEnergyFull
	}
	return attrCapacity, ""
}

func readString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readInt(path string) (int64, error) {
	s, err := readString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
