package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	var flags convertFlags

	rootCmd := &cobra.Command{
		Use:   "cdlconvert [files...]",
		Short: "Convert ASC CDL color corrections between formats",
		Long: "Convert color corrections between cc, ccc, cdl, nk, ale, flex and rcdl files.\n" +
			"With no files, print this help.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runConvert(cmd, ctx, flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json")

	f := rootCmd.Flags()
	f.StringP("input", "i", "", "Input format; detected from each file when empty")
	f.StringP("output", "o", "", "Comma separated output formats (default from config, cc)")
	f.StringP("destination", "d", "", "Directory the outputs are written to")
	f.Int("precision", -1, "Fractional digits written; -1 keeps the digits each value was read with")
	f.Bool("halt", false, "Fail on negative slope, power or saturation instead of clamping to zero")
	f.Bool("check", false, "Warn about values outside the usual grading range")
	f.Bool("merge", false, "Merge every input into one collection")
	f.String("collection-name", "", "Name of the merged collection")
	f.Bool("split-singles", true, "Write one file per correction for single-correction formats")
	f.Bool("rollback", false, "Release the ids of a file that fails to parse")
	f.BoolVar(&flags.dryRun, "no-output", false, "Parse and render without writing any file")

	ctx.bindFlags(rootCmd.PersistentFlags())
	ctx.bindFlags(f)

	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
