package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ProjectConfigFile is the optional per-project configuration file
const ProjectConfigFile = "dorecipe.toml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "DORECIPE_"

// LoadParams describes where Load looks for configuration
type LoadParams struct {
	// RootDir is the project root; dorecipe.toml is read from there
	RootDir string

	// RootExtra is the root package's extra mapping. The section named by
	// extra-key is layered on top of the project file.
	RootExtra map[string]interface{}

	// Overrides are applied last, keyed by option name ("allow-contrib")
	Overrides map[string]interface{}
}

// Load resolves Options from all layers and validates the result
func Load(params LoadParams) (Options, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Project config file
	if params.RootDir != "" {
		path := filepath.Join(params.RootDir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return Options{}, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load project config from %s", path)
			}
		}
	}

	// 3. Root package extra section
	extraKey := k.String("extra-key")
	if section, ok := params.RootExtra[extraKey].(map[string]interface{}); ok {
		if err := k.Load(confmap.Provider(section, "."), nil); err != nil {
			return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load root package extra")
		}
	}

	// 4. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Explicit overrides
	if len(params.Overrides) > 0 {
		if err := k.Load(confmap.Provider(params.Overrides, "."), nil); err != nil {
			return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	if params.RootDir != "" {
		if err := k.Set("root-dir", params.RootDir); err != nil {
			return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to set root dir")
		}
	}

	opts, err := decode(k)
	if err != nil {
		return Options{}, err
	}

	if err := Validate(opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Defaults returns the embedded defaults without reading any other layer
func Defaults() Options {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	opts, err := decode(k)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return opts
}

var validate = validator.New()

// Validate checks the structural constraints of Options
func Validate(opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid options")
	}
	return nil
}

func decode(k *koanf.Koanf) (Options, error) {
	var opts Options
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &opts,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &opts, unmarshalConf); err != nil {
		return Options{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal options")
	}
	return opts, nil
}

// envKey maps DORECIPE_ALLOW_CONTRIB to allow-contrib and
// DORECIPE_CATALOG__ENABLED to catalog.enabled
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	return strings.ReplaceAll(key, "_", "-")
}
