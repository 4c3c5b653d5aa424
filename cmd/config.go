package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change stored settings",
	Long: `The config command reads and writes the settings file in the XDG config
directory. Environment variables and flags still override what is stored.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadStored()
		if err != nil {
			return err
		}
		p, err := config.Path()
		if err != nil {
			return err
		}
		pterm.Printf("📄 %s\n\n", p)
		rows := [][]string{
			{"base_url", c.BaseURL},
			{"collection", c.Collection},
			{"log_level", c.LogLevel},
			{"refresh.interval", c.Refresh.Interval},
			{"refresh.lead", c.Refresh.Lead},
			{"refresh.policy", c.Refresh.Policy},
			{"timeout", c.Timeout},
		}
		for _, r := range rows {
			pterm.Printf("  %-18s %s\n", r[0], r[1])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one stored setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadStored()
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(c); err != nil {
			return err
		}
		pterm.Success.Printf("%s set to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
