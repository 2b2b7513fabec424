package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jihwankim/mqtt-sim/pkg/expand"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Args:  cobra.NoArgs,
	Short: "Load and validate a config without running it",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return withExitCode(2, fmt.Errorf("-c/--config is required"))
	}

	p, err := plan.Load(cfgFile)
	if err != nil {
		return withExitCode(2, err)
	}

	if err := expand.Validate(p); err != nil {
		return withExitCode(2, err)
	}

	resolved, err := expand.ExpandAll(p)
	if err != nil {
		return withExitCode(2, err)
	}

	fmt.Printf("config valid: %d broker(s), %d stream template(s), %d resolved stream(s)\n",
		len(p.Brokers), len(p.Streams), len(resolved))
	return nil
}
