package binrange

import (
	"bytes"
	"flag"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultName    = "ranges"
	DefaultWorkers = 4
)

// Config describes one range aggregation.
type Config struct {
	Name    string           `yaml:"name"`
	Field   string           `yaml:"field"`
	Type    ValuesSourceType `yaml:"type"`
	Keyed   bool             `yaml:"keyed"`
	Workers int              `yaml:"workers"`
	Ranges  []RangeConfig    `yaml:"ranges"`
}

// RangeConfig is one range. Mask is a CIDR block and excludes From and To;
// it is only valid for ip fields.
type RangeConfig struct {
	Key  string `yaml:"key"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Mask string `yaml:"mask"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	cfg.Type = ValuesSourceIP
	f.StringVar(&cfg.Name, prefixConfig(prefix, "name"), DefaultName, "Name of the aggregation in results.")
	f.StringVar(&cfg.Field, prefixConfig(prefix, "field"), "", "Field to aggregate.")
	f.Func(prefixConfig(prefix, "type"), "Values source type of the field (ip, keyword).", func(s string) error {
		cfg.Type = ValuesSourceType(s)
		return nil
	})
	f.BoolVar(&cfg.Keyed, prefixConfig(prefix, "keyed"), false, "Render buckets keyed by range key.")
	f.IntVar(&cfg.Workers, prefixConfig(prefix, "workers"), DefaultWorkers, "Partitions aggregated concurrently.")
}

// ParseConfig overlays YAML onto cfg. Unknown fields are rejected.
func ParseConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrap(err, "decode range config")
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Field == "" {
		return errors.Wrap(ErrInvalidConfig, "field cannot be empty")
	}
	switch cfg.Type {
	case ValuesSourceIP, ValuesSourceKeyword:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unsupported type %q", cfg.Type)
	}
	if cfg.Workers <= 0 {
		return errors.Wrap(ErrInvalidConfig, "workers must be positive")
	}
	if len(cfg.Ranges) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one range is required")
	}
	_, err := cfg.BuildRanges()
	return err
}

// BuildRanges parses and checks the configured bounds.
func (cfg *Config) BuildRanges() (*RangeList, error) {
	ranges := make([]Range, 0, len(cfg.Ranges))
	for i, rc := range cfg.Ranges {
		r, err := rc.build(cfg.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "range %d", i)
		}
		ranges = append(ranges, r)
	}
	return NewRangeList(ranges...), nil
}

// ParseValue encodes a textual value of the given type.
func ParseValue(typ ValuesSourceType, s string) ([]byte, error) {
	if typ == ValuesSourceIP {
		return ParseIP(s)
	}
	return []byte(s), nil
}

func (rc RangeConfig) build(typ ValuesSourceType) (Range, error) {
	r := Range{Key: rc.Key}
	if rc.Mask != "" {
		if typ != ValuesSourceIP {
			return Range{}, errors.Wrapf(ErrInvalidRange, "mask requires an ip field, got %s", typ)
		}
		if rc.From != "" || rc.To != "" {
			return Range{}, errors.Wrap(ErrInvalidRange, "mask cannot be combined with from or to")
		}
		from, to, err := ParseMask(rc.Mask)
		if err != nil {
			return Range{}, errors.Wrap(ErrInvalidRange, err.Error())
		}
		r.From, r.To = from, to
		if r.Key == "" {
			r.Key = rc.Mask
		}
		return r, nil
	}

	var err error
	if rc.From != "" {
		if r.From, err = ParseValue(typ, rc.From); err != nil {
			return Range{}, errors.Wrap(ErrInvalidRange, err.Error())
		}
	}
	if rc.To != "" {
		if r.To, err = ParseValue(typ, rc.To); err != nil {
			return Range{}, errors.Wrap(ErrInvalidRange, err.Error())
		}
	}
	if r.From != nil && r.To != nil && bytes.Compare(r.From, r.To) > 0 {
		return Range{}, errors.Wrapf(ErrInvalidRange, "from %s is greater than to %s", rc.From, rc.To)
	}
	return r, nil
}

func prefixConfig(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
