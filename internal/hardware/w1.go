package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultW1Root = "/sys/bus/w1/devices"

	defaultMaster = "w1_bus_master1"
	probeFamily   = "28-"
)

// W1Bus reads DS18B20 probes through the w1_therm sysfs interface. A bulk
// trigger starts the conversion on every probe at once, so collecting the
// values later does not block on the bus.
type W1Bus struct {
	root   string
	master string
	power  func(on bool) error
}

// NewW1Bus reads probes under root. power switches the probe supply and may
// be nil when the supply is not switchable.
func NewW1Bus(root string, power func(on bool) error) *W1Bus {
	if root == "" {
		root = DefaultW1Root
	}
	return &W1Bus{root: root, master: defaultMaster, power: power}
}

// RequestConversion writes the bulk trigger to the bus master.
func (b *W1Bus) RequestConversion(addrs []string) error {
	if len(addrs) == 0 {
		return nil
	}
	p := filepath.Join(b.root, b.master, "therm_bulk_read")
	if err := os.WriteFile(p, []byte("trigger\n"), 0o644); err != nil {
		return fmt.Errorf("trigger conversion: %w", err)
	}
	return nil
}

// ReadValue returns the last converted temperature of addr in degrees.
func (b *W1Bus) ReadValue(addr string) (float64, bool) {
	if addr == "" || strings.ContainsAny(addr, `/\`) {
		return 0, false
	}
	raw, err := os.ReadFile(filepath.Join(b.root, addr, "temperature"))
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, false
	}
	milli, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return float64(milli) / 1000, true
}

func (b *W1Bus) SetPower(on bool) error {
	if b.power == nil {
		return nil
	}
	return b.power(on)
}

// Discover lists the temperature probe addresses present on the bus.
func (b *W1Bus) Discover() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("list w1 devices: %w", err)
	}
	var addrs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), probeFamily) {
			addrs = append(addrs, e.Name())
		}
	}
	sort.Strings(addrs)
	return addrs, nil
}
