package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cdlconvert/internal/formats"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, c := range formats.All() {
				rows = append(rows, []string{
					string(c.Format),
					c.Title,
					strings.Join(c.Extensions, " "),
					yesNo(c.Single),
					c.PrecisionLabel(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
				headers: []string{"Name", "Description", "Extensions", "Single", "Numerals"},
			}, rows))
			return nil
		},
	}
}
