package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// maxPrecision bounds output precision. Values are exact decimals, but
// nothing downstream reads more digits than this.
const maxPrecision = 12

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if len(c.Output.Formats) == 0 {
		return errors.New("output.formats must name at least one format")
	}
	for _, name := range c.Output.Formats {
		if !slices.Contains(formatNames, name) {
			return fmt.Errorf("output.formats: unsupported format %q (supported: %s)", name, strings.Join(formatNames, ", "))
		}
	}
	if c.Output.Precision < -1 || c.Output.Precision > maxPrecision {
		return fmt.Errorf("output.precision must be between -1 and %d, got %d", maxPrecision, c.Output.Precision)
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.InputFormat != "" && !slices.Contains(formatNames, c.Conversion.InputFormat) {
		return fmt.Errorf("conversion.input_format: unsupported format %q (supported: %s)", c.Conversion.InputFormat, strings.Join(formatNames, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
