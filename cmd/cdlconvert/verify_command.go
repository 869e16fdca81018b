package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/convert"
	"cdlconvert/internal/formats"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that a file survives a round trip through a format",
		Long: "Serialize the file in the target format, read that text back and serialize it again.\n" +
			"Any difference between the two passes is printed as a line diff.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, inFormat, model, err := loadModel(ctx, cfg, args[0])
			if err != nil {
				return err
			}
			target := inFormat
			if output != "" {
				target = formats.Format(output)
			}
			wo := formats.WriteOptions{}
			if cfg.Output.Precision >= 0 {
				p := cdl.Fixed(cfg.Output.Precision)
				wo.Precision = &p
			}

			res, err := convert.Verify(model, target, wo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			label := fmt.Sprintf("%s -> %s", source, target)
			if res.Stable() {
				fmt.Fprintln(out, renderStatusLine(label, statusOK, "round trip is stable", colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine(label, statusWarn, "second pass differs", colorize))
			fmt.Fprint(out, res.Diff)
			return fmt.Errorf("round trip through %s is not stable", target)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Format to verify; defaults to the input format")
	return cmd
}
