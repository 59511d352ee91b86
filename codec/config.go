package codec

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config bundles the options of both codecs. It loads from YAML:
//
//	json:
//	  pretty: true
//	  driver: encoding/json
//	  array_link_rels: [item]
//	  parse:
//	    max_embed_depth: 4
//	    duplicate_keys: warn
//	xml:
//	  indent: "    "
type Config struct {
	JSON JSONOptions `yaml:"json"`
	XML  XMLOptions  `yaml:"xml"`
}

// LoadConfig decodes a YAML configuration. Unknown keys are rejected and an
// empty document yields the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("codec: config: %w", err)
	}
	if cfg.JSON.Driver != "" {
		if _, err := lookupDriver(cfg.JSON.Driver); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}
