package benchmarks

import (
	"os"

	"github.com/spf13/cobra"
)

func LayoutCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Validate a map and print it in normal form",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := loadLayout()
			if err != nil {
				return err
			}
			if out != "" {
				return WriteLayoutFile(out, layout)
			}
			return layout.Write(os.Stdout)
		},
	}
	addGridFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the map to this file instead of stdout")
	return cmd
}
