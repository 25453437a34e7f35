// Package config implements ConfigLoader (SPEC_FULL.md §1, §6.2): TOML
// file plus CLI flags, loaded with spf13/viper and spf13/pflag, validated
// with go-playground/validator/v10 struct tags.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NodeSpec is one entry in a role's array in the TOML file (§6.2): a
// launchable role-id plus its bind address and, for gate, its out-facing
// ports.
type NodeSpec struct {
	ID         uint32 `mapstructure:"id" validate:"required"`
	InAddress  string `mapstructure:"in_address" validate:"required"`
	OutTCPPort int    `mapstructure:"out_tcp_port"`
	OutWSPort  int    `mapstructure:"out_ws_port"`
	OutUDPPort int    `mapstructure:"out_udp_port"`
}

// LogConfig is the `log` top-level table (§6.5).
type LogConfig struct {
	Dir     string `mapstructure:"dir" validate:"required"`
	MaxFile int    `mapstructure:"max_file" validate:"required,min=1"`
	Console bool   `mapstructure:"console"`
}

// RedisConfig backs the kvstore package's Redis connection (SPEC_FULL.md
// §1 KVStore wiring).
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

// NATSConfig backs the pushbus package's server-initiated push fan-out
// (SPEC_FULL.md §4.5 "[NEW] Server-initiated Push fan-out").
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// File is the fully parsed, validated configuration (§6.2).
type File struct {
	CenterInAddress string      `mapstructure:"center_in_address" validate:"required"`
	Log             LogConfig   `mapstructure:"log" validate:"required"`
	Login           []NodeSpec  `mapstructure:"login" validate:"dive"`
	Gate            []NodeSpec  `mapstructure:"gate" validate:"dive"`
	World           []NodeSpec  `mapstructure:"world" validate:"dive"`
	Game            []NodeSpec  `mapstructure:"game" validate:"dive"`
	DebugAddr       string      `mapstructure:"debug_addr"`
	Redis           RedisConfig `mapstructure:"redis"`
	NATS            NATSConfig  `mapstructure:"nats"`
}

// Flags is the parsed form of §6.1's CLI surface.
type Flags struct {
	ConfigPath string
	Servers    []string // repeatable "--server role-id"
}

// ParseFlags parses args with spf13/pflag (§6.1).
func ParseFlags(args []string) (Flags, error) {
	fs := pflag.NewFlagSet("citadel", pflag.ContinueOnError)
	configPath := fs.String("config", "../conf/config-dev.toml", "path to the TOML config file")
	servers := fs.StringArray("server", nil, "role-id to launch in this process; repeatable")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return Flags{ConfigPath: *configPath, Servers: *servers}, nil
}

// Load reads path with viper, unmarshals into File, and validates it.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("config: validate %s: %w", path, err)
	}
	return &f, nil
}

// NodeByRoleID finds the NodeSpec for "<role>-<id>" in f's role arrays.
func (f *File) NodeByRoleID(role string, id uint32) (NodeSpec, bool) {
	var list []NodeSpec
	switch role {
	case "login":
		list = f.Login
	case "gate":
		list = f.Gate
	case "world":
		list = f.World
	case "game":
		list = f.Game
	default:
		return NodeSpec{}, false
	}
	for _, n := range list {
		if n.ID == id {
			return n, true
		}
	}
	return NodeSpec{}, false
}
