package config

const (
	defaultOutputFormat   = "cc"
	defaultDestination    = "./converted"
	defaultPrecision      = -1
	defaultCollectionName = "merged"
	defaultSplitSingles   = true
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// formatNames lists every format the converter reads and writes. The
// formats package registers the same set.
var formatNames = []string{"ale", "cc", "ccc", "cdl", "flex", "nk", "rcdl"}

// FormatNames returns the supported format names in alphabetical order.
func FormatNames() []string {
	out := make([]string, len(formatNames))
	copy(out, formatNames)
	return out
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Formats:        []string{defaultOutputFormat},
			Destination:    defaultDestination,
			Precision:      defaultPrecision,
			CollectionName: defaultCollectionName,
			SplitSingles:   defaultSplitSingles,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
