package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cdlconvert/internal/config"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/services"
)

// flagKeys maps config keys to the flags that override them. Every key can
// also be set through the environment, e.g. CDLCONVERT_OUTPUT_FORMATS.
var flagKeys = map[string]string{
	"output.formats":               "output",
	"output.destination":           "destination",
	"output.precision":             "precision",
	"output.merge_inputs":          "merge",
	"output.split_singles":         "split-singles",
	"output.collection_name":       "collection-name",
	"conversion.input_format":      "input",
	"conversion.halt":              "halt",
	"conversion.check":             "check",
	"conversion.rollback_on_error": "rollback",
	"logging.level":                "log-level",
	"logging.format":               "log-format",
}

type commandContext struct {
	configFlag *string
	v          *viper.Viper
	runID      string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	v := viper.New()
	v.SetEnvPrefix("CDLCONVERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &commandContext{
		configFlag: configFlag,
		v:          v,
		runID:      uuid.NewString(),
	}
}

// bindFlags registers flag overrides for every config key whose flag is
// defined in flags.
func (c *commandContext) bindFlags(flags *pflag.FlagSet) {
	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = c.v.BindPFlag(key, f)
		}
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "apply overrides", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// applyOverrides copies values set by flag or environment onto cfg.
func (c *commandContext) applyOverrides(cfg *config.Config) {
	v := c.v
	set := func(key string, apply func()) {
		if v.IsSet(key) {
			apply()
		}
	}
	set("output.formats", func() { cfg.Output.Formats = []string{v.GetString("output.formats")} })
	set("output.destination", func() { cfg.Output.Destination = v.GetString("output.destination") })
	set("output.precision", func() { cfg.Output.Precision = v.GetInt("output.precision") })
	set("output.merge_inputs", func() { cfg.Output.MergeInputs = v.GetBool("output.merge_inputs") })
	set("output.split_singles", func() { cfg.Output.SplitSingles = v.GetBool("output.split_singles") })
	set("output.collection_name", func() { cfg.Output.CollectionName = v.GetString("output.collection_name") })
	set("conversion.input_format", func() { cfg.Conversion.InputFormat = v.GetString("conversion.input_format") })
	set("conversion.halt", func() { cfg.Conversion.Halt = v.GetBool("conversion.halt") })
	set("conversion.check", func() { cfg.Conversion.Check = v.GetBool("conversion.check") })
	set("conversion.rollback_on_error", func() { cfg.Conversion.RollbackOnError = v.GetBool("conversion.rollback_on_error") })
	set("logging.level", func() { cfg.Logging.Level = v.GetString("logging.level") })
	set("logging.format", func() { cfg.Logging.Format = v.GetString("logging.format") })
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue builds the run logger once. Config errors fall back to the
// defaults so commands that skip config loading can still log.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.New(logging.Options{})
		}
		c.logger = logger
	})
	return c.logger
}

// runContext tags ctx with the invocation's run id.
func (c *commandContext) runContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRunID(ctx, c.runID)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
