package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalwire/sigmond-holyguacamole/pkg/cli"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu board",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := loadMenu(cfg)
		if err != nil {
			return err
		}
		fmt.Println(cli.MenuBoard(m, cli.NewStyles(cli.DefaultTheme)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
