package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	RoomCapacities string `mapstructure:"ROOM_CAPACITIES"`
	UnitCapacities string `mapstructure:"UNIT_CAPACITIES"`
	MobileNurses   int    `mapstructure:"MOBILE_NURSES"`
	Aides          int    `mapstructure:"AIDES"`

	ConsultTransportMinutes      int `mapstructure:"CONSULT_TRANSPORT_MINUTES"`
	UnitTransportExpressMinutes  int `mapstructure:"UNIT_TRANSPORT_EXPRESS_MINUTES"`
	UnitTransportStandardMinutes int `mapstructure:"UNIT_TRANSPORT_STANDARD_MINUTES"`
	ReturnTransportMinutes       int `mapstructure:"RETURN_TRANSPORT_MINUTES"`
	MinDwellMinutes              int `mapstructure:"MIN_DWELL_MINUTES"`
	SupervisionLapseMinutes      int `mapstructure:"SUPERVISION_LAPSE_MINUTES"`
	LongWaitMinutes              int `mapstructure:"LONG_WAIT_MINUTES"`
	AideAbsenceCapMinutes        int `mapstructure:"AIDE_ABSENCE_CAP_MINUTES"`
	AideReturnWarningMinutes     int `mapstructure:"AIDE_RETURN_WARNING_MINUTES"`
	MobileStaffReserve           int `mapstructure:"MOBILE_STAFF_RESERVE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ROOM_CAPACITIES", "5,10,5")
	v.SetDefault("UNIT_CAPACITIES", "critical-care=5,cardiology=10,pneumology=5,neurology=8,orthopedics=7")
	v.SetDefault("MOBILE_NURSES", 2)
	v.SetDefault("AIDES", 2)
	v.SetDefault("CONSULT_TRANSPORT_MINUTES", 5)
	v.SetDefault("UNIT_TRANSPORT_EXPRESS_MINUTES", 5)
	v.SetDefault("UNIT_TRANSPORT_STANDARD_MINUTES", 45)
	v.SetDefault("RETURN_TRANSPORT_MINUTES", 5)
	v.SetDefault("MIN_DWELL_MINUTES", 5)
	v.SetDefault("SUPERVISION_LAPSE_MINUTES", 15)
	v.SetDefault("LONG_WAIT_MINUTES", 360)
	v.SetDefault("AIDE_ABSENCE_CAP_MINUTES", 60)
	v.SetDefault("AIDE_RETURN_WARNING_MINUTES", 10)
	v.SetDefault("MOBILE_STAFF_RESERVE", 2)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("ROOM_CAPACITIES")
	v.BindEnv("UNIT_CAPACITIES")
	v.BindEnv("MOBILE_NURSES")
	v.BindEnv("AIDES")
	v.BindEnv("CONSULT_TRANSPORT_MINUTES")
	v.BindEnv("UNIT_TRANSPORT_EXPRESS_MINUTES")
	v.BindEnv("UNIT_TRANSPORT_STANDARD_MINUTES")
	v.BindEnv("RETURN_TRANSPORT_MINUTES")
	v.BindEnv("MIN_DWELL_MINUTES")
	v.BindEnv("SUPERVISION_LAPSE_MINUTES")
	v.BindEnv("LONG_WAIT_MINUTES")
	v.BindEnv("AIDE_ABSENCE_CAP_MINUTES")
	v.BindEnv("AIDE_RETURN_WARNING_MINUTES")
	v.BindEnv("MOBILE_STAFF_RESERVE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Rooms parses ROOM_CAPACITIES into the ordered capacity list.
func (c *Config) Rooms() ([]int, error) {
	var caps []int
	for _, part := range strings.Split(c.RoomCapacities, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("ROOM_CAPACITIES entry %q: %w", part, err)
		}
		caps = append(caps, n)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("ROOM_CAPACITIES must declare at least one room")
	}
	return caps, nil
}

// UnitCapacity is one parsed UNIT_CAPACITIES entry, in declaration order.
type UnitCapacity struct {
	Name     string
	Capacity int
}

// Units parses UNIT_CAPACITIES ("name=cap,name=cap,...").
func (c *Config) Units() ([]UnitCapacity, error) {
	var units []UnitCapacity
	for _, part := range strings.Split(c.UnitCapacities, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, capStr, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("UNIT_CAPACITIES entry %q: want name=capacity", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(capStr))
		if err != nil {
			return nil, fmt.Errorf("UNIT_CAPACITIES entry %q: %w", part, err)
		}
		units = append(units, UnitCapacity{Name: strings.TrimSpace(name), Capacity: n})
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("UNIT_CAPACITIES must declare at least one unit")
	}
	return units, nil
}

// Validate checks that the configuration describes a runnable department.
func (c *Config) Validate() error {
	rooms, err := c.Rooms()
	if err != nil {
		return err
	}
	for i, capacity := range rooms {
		if capacity <= 0 {
			return fmt.Errorf("ROOM_CAPACITIES entry %d must be positive, got %d", i+1, capacity)
		}
	}
	units, err := c.Units()
	if err != nil {
		return err
	}
	for _, u := range units {
		if u.Capacity <= 0 {
			return fmt.Errorf("unit %q capacity must be positive, got %d", u.Name, u.Capacity)
		}
	}
	if c.MobileNurses < 1 {
		return fmt.Errorf("MOBILE_NURSES must be at least 1 (the rescue path needs one), got %d", c.MobileNurses)
	}
	if c.Aides < 0 {
		return fmt.Errorf("AIDES must not be negative, got %d", c.Aides)
	}
	for key, val := range map[string]int{
		"CONSULT_TRANSPORT_MINUTES":       c.ConsultTransportMinutes,
		"UNIT_TRANSPORT_EXPRESS_MINUTES":  c.UnitTransportExpressMinutes,
		"UNIT_TRANSPORT_STANDARD_MINUTES": c.UnitTransportStandardMinutes,
		"RETURN_TRANSPORT_MINUTES":        c.ReturnTransportMinutes,
		"SUPERVISION_LAPSE_MINUTES":       c.SupervisionLapseMinutes,
		"LONG_WAIT_MINUTES":               c.LongWaitMinutes,
		"AIDE_ABSENCE_CAP_MINUTES":        c.AideAbsenceCapMinutes,
	} {
		if val <= 0 {
			return fmt.Errorf("%s must be positive, got %d", key, val)
		}
	}
	if c.MinDwellMinutes < 0 {
		return fmt.Errorf("MIN_DWELL_MINUTES must not be negative, got %d", c.MinDwellMinutes)
	}
	if c.AideReturnWarningMinutes < 0 {
		return fmt.Errorf("AIDE_RETURN_WARNING_MINUTES must not be negative, got %d", c.AideReturnWarningMinutes)
	}
	if c.MobileStaffReserve < 0 {
		return fmt.Errorf("MOBILE_STAFF_RESERVE must not be negative, got %d", c.MobileStaffReserve)
	}
	return nil
}
