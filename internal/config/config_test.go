package config

import (
	"strings"
	"testing"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.MobileNurses != 2 || cfg.Aides != 2 {
		t.Errorf("roster = %d nurses / %d aides, want 2/2", cfg.MobileNurses, cfg.Aides)
	}
	if cfg.UnitTransportStandardMinutes != 45 || cfg.UnitTransportExpressMinutes != 5 {
		t.Errorf("transport minutes = %d/%d, want 45/5",
			cfg.UnitTransportStandardMinutes, cfg.UnitTransportExpressMinutes)
	}
	if cfg.LongWaitMinutes != 360 {
		t.Errorf("LongWaitMinutes = %d, want 360", cfg.LongWaitMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MOBILE_NURSES", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := defaultConfig(t)
	if cfg.MobileNurses != 5 {
		t.Errorf("MobileNurses = %d, want the env override 5", cfg.MobileNurses)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestRooms(t *testing.T) {
	cfg := defaultConfig(t)

	rooms, err := cfg.Rooms()
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	want := []int{5, 10, 5}
	if len(rooms) != len(want) {
		t.Fatalf("rooms = %v, want %v", rooms, want)
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d] = %d, want %d", i, rooms[i], want[i])
		}
	}

	cfg.RoomCapacities = "3, 4 ,2"
	if rooms, err = cfg.Rooms(); err != nil || len(rooms) != 3 || rooms[1] != 4 {
		t.Errorf("spaced list: rooms=%v err=%v", rooms, err)
	}

	cfg.RoomCapacities = "5,x,5"
	if _, err := cfg.Rooms(); err == nil {
		t.Error("non-numeric entry must fail")
	}
	cfg.RoomCapacities = ""
	if _, err := cfg.Rooms(); err == nil {
		t.Error("empty list must fail")
	}
}

func TestUnits(t *testing.T) {
	cfg := defaultConfig(t)

	units, err := cfg.Units()
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if len(units) != 5 {
		t.Fatalf("units = %v, want five wards", units)
	}
	if units[0].Name != "critical-care" || units[0].Capacity != 5 {
		t.Errorf("units[0] = %+v, want critical-care=5", units[0])
	}
	if units[1].Name != "cardiology" || units[1].Capacity != 10 {
		t.Errorf("units[1] = %+v, want cardiology=10", units[1])
	}

	cfg.UnitCapacities = "cardiology"
	if _, err := cfg.Units(); err == nil || !strings.Contains(err.Error(), "name=capacity") {
		t.Errorf("missing separator: got %v", err)
	}
	cfg.UnitCapacities = "cardiology=many"
	if _, err := cfg.Units(); err == nil {
		t.Error("non-numeric capacity must fail")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero room capacity", func(c *Config) { c.RoomCapacities = "5,0,5" }},
		{"zero unit capacity", func(c *Config) { c.UnitCapacities = "cardiology=0" }},
		{"no mobile nurses", func(c *Config) { c.MobileNurses = 0 }},
		{"negative aides", func(c *Config) { c.Aides = -1 }},
		{"zero transport", func(c *Config) { c.ConsultTransportMinutes = 0 }},
		{"zero long wait", func(c *Config) { c.LongWaitMinutes = 0 }},
		{"negative dwell", func(c *Config) { c.MinDwellMinutes = -1 }},
		{"negative reserve", func(c *Config) { c.MobileStaffReserve = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("want a validation error")
			}
		})
	}
}
