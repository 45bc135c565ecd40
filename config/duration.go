package config

import "time"

// Duration wraps time.Duration so that YAML values like "6h" or "5m"
// unmarshal through time.ParseDuration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for a Duration.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for a Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
