package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mahmoudd2003/list/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the city and category preset keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := initPresets()
		if err != nil {
			return err
		}
		return printPresets(cmd.OutOrStdout(), reg)
	},
}

func printPresets(w io.Writer, reg *preset.Registry) error {
	if _, err := fmt.Fprintln(w, "cities:"); err != nil {
		return err
	}
	for _, c := range reg.Cities() {
		if _, err := fmt.Fprintf(w, "  %-10s %s (%s, %.0fm)\n", c.Key, c.Name, c.RegionCode, c.RadiusMeters); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "categories:"); err != nil {
		return err
	}
	for _, c := range reg.Categories() {
		if _, err := fmt.Fprintf(w, "  %-10s %s\n", c.Key, c.Label); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
