package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cropml/yieldbench/experiment"
	"github.com/cropml/yieldbench/pkg/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or write yieldbench configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "marshal config")
		}
		_, err = os.Stdout.Write(b)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default yieldbench.yaml in the working directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "yieldbench.yaml"
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("%s already exists", path)
		}
		if err := experiment.SaveConfig(experiment.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
