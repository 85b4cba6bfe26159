// Package config loads /config/desynthesizer.xml: a flat list of
// name/value properties.
package config

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlConfig struct {
	XMLName    xml.Name      `xml:"config"`
	Properties []xmlProperty `xml:"property"`
}

// Config holds the module-level parameters recognized by this port.
// Unknown property names in the source file are logged by the caller and
// otherwise ignored.
type Config struct {
	StreamBufSizeThreshold int
}

// Default returns the built-in parameter values used when no config file
// overrides them.
func Default() Config {
	return Config{StreamBufSizeThreshold: 700_000}
}

// Load parses raw XML against the config schema, starting from Default()
// and overriding recognized properties. It returns the warnings a caller
// should log for unrecognized property names, alongside any hard parse
// error (malformed XML).
func Load(raw []byte) (Config, []string, error) {
	cfg := Default()
	var doc xmlConfig
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return cfg, nil, fmt.Errorf("config: parse: %w", err)
	}

	var warnings []string
	for _, p := range doc.Properties {
		switch p.Name {
		case "streamBufSizeThreshold":
			n, err := strconv.Atoi(p.Value)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("streamBufSizeThreshold: invalid integer %q", p.Value))
				continue
			}
			cfg.StreamBufSizeThreshold = n
		default:
			warnings = append(warnings, fmt.Sprintf("unknown property %q ignored", p.Name))
		}
	}
	return cfg, warnings, nil
}
