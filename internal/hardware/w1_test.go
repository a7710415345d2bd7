package hardware

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeProbe(t *testing.T, root, addr, content string) {
	t.Helper()
	dir := filepath.Join(root, addr)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "temperature"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestW1BusReadValue(t *testing.T) {
	root := t.TempDir()
	writeProbe(t, root, "28-000001", "61250\n")
	writeProbe(t, root, "28-000002", "-1500\n")
	writeProbe(t, root, "28-000003", "\n")
	writeProbe(t, root, "28-000004", "garbage")

	b := NewW1Bus(root, nil)
	tests := []struct {
		addr string
		want float64
		ok   bool
	}{
		{"28-000001", 61.25, true},
		{"28-000002", -1.5, true},
		{"28-000003", 0, false},
		{"28-000004", 0, false},
		{"28-missing", 0, false},
		{"../28-000001", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, ok := b.ReadValue(tt.addr)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ReadValue(%q) = (%v, %v), want (%v, %v)", tt.addr, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestW1BusRequestConversion(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, defaultMaster), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	b := NewW1Bus(root, nil)

	if err := b.RequestConversion([]string{"28-000001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(root, defaultMaster, "therm_bulk_read"))
	if err != nil {
		t.Fatalf("read trigger: %v", err)
	}
	if string(raw) != "trigger\n" {
		t.Errorf("trigger content = %q", raw)
	}
}

func TestW1BusRequestConversionWithoutMaster(t *testing.T) {
	b := NewW1Bus(filepath.Join(t.TempDir(), "absent"), nil)
	if err := b.RequestConversion([]string{"28-000001"}); err == nil {
		t.Fatal("expected error without a bus master")
	}
	if err := b.RequestConversion(nil); err != nil {
		t.Fatalf("no probes mapped should be a no-op, got %v", err)
	}
}

func TestW1BusPower(t *testing.T) {
	relays := NewFakeRelays()
	b := NewW1Bus(t.TempDir(), relays.SetSensorPower)

	if err := b.SetPower(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, power := relays.State(); power {
		t.Error("probe supply should be off")
	}
	if err := b.SetPower(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relays.SetError = errors.New("line busy")
	if err := b.SetPower(false); err == nil {
		t.Error("expected relay error to surface")
	}

	if err := NewW1Bus(t.TempDir(), nil).SetPower(false); err != nil {
		t.Errorf("unswitched supply should ignore SetPower, got %v", err)
	}
}

func TestW1BusDiscover(t *testing.T) {
	root := t.TempDir()
	writeProbe(t, root, "28-00000b", "1000")
	writeProbe(t, root, "28-00000a", "1000")
	if err := os.MkdirAll(filepath.Join(root, defaultMaster), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := NewW1Bus(root, nil).Discover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"28-00000a", "28-00000b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestFakeRelaysLog(t *testing.T) {
	f := NewFakeRelays()
	f.SetFan(true)
	f.SetFan(true)
	f.SetPump(true)
	f.SetFan(false)

	want := []string{"fan=on", "pump=on", "fan=off"}
	if got := f.Log(); !reflect.DeepEqual(got, want) {
		t.Errorf("Log() = %v, want %v", got, want)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fan, pump, _ := f.State()
	if fan || pump || !f.Closed() {
		t.Error("Close should switch outputs off")
	}
}
