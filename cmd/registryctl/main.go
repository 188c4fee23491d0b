package main

import (
	"os"

	"github.com/spf13/cobra"

	"go-fund-registry-service/internal/tools/migrate"
	"go-fund-registry-service/internal/tools/seed"
)

func main() {
	root := &cobra.Command{
		Use:          "registryctl",
		Short:        "Operational tooling for the fund registry",
		SilenceUsage: true,
	}
	root.AddCommand(migrate.NewRootCommand())
	root.AddCommand(seed.NewRootCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
