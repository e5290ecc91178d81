package sftpmount

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the construction-time record spec.md 6 enumerates: source,
// target, the two identity maps, the two default ids, and the helper exec
// line, plus the logging/recovery knobs SPEC_FULL.md 6.3 adds so the
// daemon entrypoint has somewhere to put its ambient settings. Loading and
// validating it is a construction-time concern; a failure here is
// session-fatal (spec.md 7), never a per-request error.
type Config struct {
	Source         string `mapstructure:"source" validate:"required,absolutepath"`
	Target         string `mapstructure:"target" validate:"required,absolutepath"`
	UIDMap         IDMap  `mapstructure:"uid_map"`
	GIDMap         IDMap  `mapstructure:"gid_map"`
	DefaultUID     int    `mapstructure:"default_uid" validate:"gte=0"`
	DefaultGID     int    `mapstructure:"default_gid" validate:"gte=0"`
	HelperExecLine string `mapstructure:"helper_exec_line" validate:"required"`

	Logging  LoggingConfig  `mapstructure:"logging"`
	Recovery RecoveryConfig `mapstructure:"recovery"`
}

// LoggingConfig carries the daemon's logging settings (SPEC_FULL.md 6.2).
// Level is validated and handed to NewLogger, which does not apply it.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// RecoveryConfig holds the helper-recovery settings. HelperProbe is the
// bounded wait Session uses when probing the helper's exit status.
// MaxAttempts is decoded and validated but Session does not read it:
// recovery attempts are not capped whatever its value.
type RecoveryConfig struct {
	HelperProbe time.Duration `mapstructure:"helper_probe" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=0"`
}

// DefaultConfig returns the values this package falls back to when a
// config file omits a section entirely, matching the literal figures
// spec.md names (~250ms helper probe) rather than inventing new ones.
func DefaultConfig() Config {
	return Config{
		DefaultUID: 0,
		DefaultGID: 0,
		Logging:    LoggingConfig{Level: "info"},
		Recovery: RecoveryConfig{
			HelperProbe: 250 * time.Millisecond,
			MaxAttempts: 0,
		},
	}
}

// idPairDecodeHook lets uid_map/gid_map be written in YAML as two-element
// sequences ([1000, 2000], or [1000, "DEFAULT_ID"]) and decodes each into an
// IDPair, translating the NO_ID_INFO/DEFAULT_ID sentinel names spec.md 3
// defines. Grounded in marmos91-dnfs's use of mapstructure decode hooks
// alongside viper for exactly this "struct-shaped YAML scalar" problem.
func idPairDecodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(IDPair{}) {
		return data, nil
	}

	seq, ok := data.([]interface{})
	if !ok || len(seq) != 2 {
		return nil, errors.Errorf("id map entry must be a two-element [host, remote] sequence, got %#v", data)
	}

	host, err := decodeIDComponent(seq[0])
	if err != nil {
		return nil, err
	}
	remote, err := decodeIDComponent(seq[1])
	if err != nil {
		return nil, err
	}

	return IDPair{HostID: host, RemoteID: remote}, nil
}

func decodeIDComponent(v interface{}) (int, error) {
	switch t := v.(type) {
	case string:
		switch strings.ToUpper(t) {
		case "NO_ID_INFO":
			return NoIDInfo, nil
		case "DEFAULT_ID":
			return DefaultID, nil
		default:
			return 0, errors.Errorf("unrecognized id sentinel %q", t)
		}
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, errors.Errorf("id map entry must be an integer or sentinel name, got %#v", v)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("absolutepath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	return v
}

// LoadConfig loads a Config from the YAML file at path, applies defaults
// for anything the file left unset, and validates the result. Grounded in
// marmos91-dnfs/pkg/config/config.go's viper.New/SetConfigFile/Unmarshal
// pattern; mapstructure is viper's own decode mechanism (SPEC_FULL.md 7.4).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	cfg := DefaultConfig()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		idPairDecodeHook,
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return &cfg, nil
}

// helperCommand renders the remote command used to launch the companion
// sshfs-family helper (spec.md 6): `sudo <line> :"<source>" "<target>"`,
// with embedded double quotes in source/target shell-escaped.
func (c *Config) helperCommand() string {
	return fmt.Sprintf("sudo %s :%s %s", c.HelperExecLine, shellQuote(c.Source), shellQuote(c.Target))
}

func shellQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
