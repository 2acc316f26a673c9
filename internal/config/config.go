package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tnqn/code-review-comments/internal/scanner"
	"github.com/tnqn/code-review-comments/internal/source"
)

const DefaultConfigPath = ".lintguide.yaml"

// Output formats understood by the report package.
var Formats = []string{"text", "json", "ndjson"}

// ErrConfigExists is returned by WriteDefault when it would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// Config is the merged configuration of a check run.
type Config struct {
	// Rules restricts the run to these rule IDs. Empty runs every rule.
	Rules        []string      `mapstructure:"rules" yaml:"rules"`
	Format       string        `mapstructure:"format" yaml:"format"`
	FailOn       string        `mapstructure:"fail_on" yaml:"fail_on"`
	Workers      int           `mapstructure:"workers" yaml:"workers"`
	ParseTimeout time.Duration `mapstructure:"parse_timeout" yaml:"parse_timeout"`
	Extensions   []string      `mapstructure:"extensions" yaml:"extensions"`
	Exclude      []string      `mapstructure:"exclude" yaml:"exclude"`

	Naming       Naming       `mapstructure:"naming" yaml:"naming"`
	ErrorStrings ErrorStrings `mapstructure:"error_strings" yaml:"error_strings"`
	Imports      Imports      `mapstructure:"imports" yaml:"imports"`
	PointerValue PointerValue `mapstructure:"pointer_value" yaml:"pointer_value"`
	LogKeys      LogKeys      `mapstructure:"log_keys" yaml:"log_keys"`
}

type Naming struct {
	MinAbbrevLen int      `mapstructure:"min_abbrev_len" yaml:"min_abbrev_len"`
	Ignore       []string `mapstructure:"ignore" yaml:"ignore"`
	// Words are extra whole words that mark name/namespace style compounds.
	Words []string `mapstructure:"words" yaml:"words"`
}

type ErrorStrings struct {
	AllowedWords []string      `mapstructure:"allowed_words" yaml:"allowed_words"`
	Constructors []Constructor `mapstructure:"constructors" yaml:"constructors"`
}

// Constructor names an error constructor and the index of its message argument.
type Constructor struct {
	Func       string `mapstructure:"func" yaml:"func"`
	MessageArg int    `mapstructure:"message_arg" yaml:"message_arg"`
}

// Imports overrides import classification by path prefix. Local defaults to
// the module path of the scanned tree.
type Imports struct {
	Standard   []string `mapstructure:"standard" yaml:"standard"`
	ThirdParty []string `mapstructure:"third_party" yaml:"third_party"`
	Local      []string `mapstructure:"local" yaml:"local"`
}

type PointerValue struct {
	MaxStructFields int `mapstructure:"max_struct_fields" yaml:"max_struct_fields"`
}

type LogKeys struct {
	Style string `mapstructure:"style" yaml:"style"`
}

// Overrides captures values coming from CLI flags. Zero values leave the
// file or default value in place.
type Overrides struct {
	Rules   []string
	Format  string
	FailOn  string
	Workers int
}

// Default returns the configuration used when no file is present.
func Default() Config {
	naming := scanner.DefaultNamingOptions()
	errStrings := scanner.DefaultErrorStringOptions()
	pv := scanner.DefaultPointerValueOptions()
	lk := scanner.DefaultLogKeyOptions()

	var ctors []Constructor
	for fn, arg := range source.DefaultErrorConstructors() {
		ctors = append(ctors, Constructor{Func: fn, MessageArg: arg})
	}
	slices.SortFunc(ctors, func(a, b Constructor) int { return strings.Compare(a.Func, b.Func) })

	return Config{
		Format:       "text",
		FailOn:       string(scanner.SeverityWarning),
		ParseTimeout: 10 * time.Second,
		Extensions:   []string{".go"},
		Naming:       Naming{MinAbbrevLen: naming.MinAbbrevLen},
		ErrorStrings: ErrorStrings{AllowedWords: errStrings.AllowedWords, Constructors: ctors},
		PointerValue: PointerValue{MaxStructFields: pv.MaxStructFields},
		LogKeys:      LogKeys{Style: lk.Style},
	}
}

// Loader merges the config file and CLI flags over the defaults.
type Loader struct {
	ConfigPath string
	// Required makes a missing config file an error instead of falling back to defaults.
	Required bool
}

// Load resolves the final configuration.
func (l Loader) Load(ov Overrides) (Config, error) {
	cfg := Default()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.UnmarshalExact(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if l.Required {
		return cfg, fmt.Errorf("config file %s not found", path)
	}

	cfg.apply(ov)
	return cfg, nil
}

func (c *Config) apply(ov Overrides) {
	if len(ov.Rules) > 0 {
		c.Rules = ov.Rules
	}
	if ov.Format != "" {
		c.Format = ov.Format
	}
	if ov.FailOn != "" {
		c.FailOn = ov.FailOn
	}
	if ov.Workers > 0 {
		c.Workers = ov.Workers
	}
}

// Validate checks values that the rest of the program trusts without checking.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	sev, err := scanner.ParseSeverity(c.FailOn)
	if err != nil || sev == scanner.SeverityInternalError {
		return fmt.Errorf("unknown fail-on severity %q (want info, warning or error)", c.FailOn)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative (got %d)", c.Workers)
	}
	if c.ParseTimeout < 0 {
		return fmt.Errorf("parse_timeout must not be negative (got %s)", c.ParseTimeout)
	}
	if c.Naming.MinAbbrevLen < 1 {
		return fmt.Errorf("naming.min_abbrev_len must be at least 1 (got %d)", c.Naming.MinAbbrevLen)
	}
	if c.PointerValue.MaxStructFields < 0 {
		return fmt.Errorf("pointer_value.max_struct_fields must not be negative (got %d)", c.PointerValue.MaxStructFields)
	}
	if !scanner.ValidKeyStyle(c.LogKeys.Style) {
		return fmt.Errorf("unknown log_keys.style %q", c.LogKeys.Style)
	}
	for _, ctor := range c.ErrorStrings.Constructors {
		if ctor.Func == "" || ctor.MessageArg < 0 {
			return fmt.Errorf("invalid error constructor %+v", ctor)
		}
	}
	return nil
}

// ErrorConstructors returns the constructor table in the form the loader expects.
func (c Config) ErrorConstructors() map[string]int {
	out := make(map[string]int, len(c.ErrorStrings.Constructors))
	for _, ctor := range c.ErrorStrings.Constructors {
		out[ctor.Func] = ctor.MessageArg
	}
	return out
}

const defaultHeader = "# lintguide configuration. Flags given on the command line take precedence.\n"

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrConfigExists)
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(defaultHeader + string(data)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
