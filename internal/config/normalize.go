package config

import (
	"fmt"
	"strings"
)

// Normalize trims and lower-cases names and expands paths. Load calls it;
// callers that change fields afterwards (flag overrides) call it again.
func (c *Config) Normalize() error {
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.Conversion.InputFormat = strings.ToLower(strings.TrimSpace(c.Conversion.InputFormat))
	return c.normalizeLogging()
}

func (c *Config) normalizeOutput() error {
	formats := make([]string, 0, len(c.Output.Formats))
	seen := make(map[string]struct{}, len(c.Output.Formats))
	for _, raw := range c.Output.Formats {
		for _, part := range strings.Split(raw, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			formats = append(formats, name)
		}
	}
	c.Output.Formats = formats

	if strings.TrimSpace(c.Output.Destination) == "" {
		c.Output.Destination = defaultDestination
	}
	var err error
	if c.Output.Destination, err = expandPath(strings.TrimSpace(c.Output.Destination)); err != nil {
		return fmt.Errorf("output.destination: %w", err)
	}
	c.Output.CollectionName = strings.TrimSpace(c.Output.CollectionName)
	if c.Output.CollectionName == "" {
		c.Output.CollectionName = defaultCollectionName
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
