package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go-fund-registry-service/internal/config"
	"go-fund-registry-service/internal/database"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/tools/common"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Load the demo fund data set",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file loaded before reading configuration")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "emit a machine-readable JSON result")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "abort if the command runs longer than this")

	root.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Insert the demo funds, investors and investments",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed apply", "apply", func(ctx context.Context) ([]string, error) {
				return runApply(opts)
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "dry-run",
		Short: "Report whether an apply would insert anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed dry-run", "dry-run", func(ctx context.Context) ([]string, error) {
				return runDryRun(opts)
			})
			return err
		},
	})
	return root
}

func run(opts *options, title, action string, fn func(ctx context.Context) ([]string, error)) ([]string, error) {
	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	details, err := fn(ctx)
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	} else {
		common.PrintHumanResult(title, details, err)
	}
	if err != nil {
		return details, fmt.Errorf("%s: %w", action, err)
	}
	return details, nil
}

func openDB(envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func runApply(opts *options) ([]string, error) {
	db, err := openDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()

	report, err := database.SeedSync(db)
	if err != nil {
		return nil, err
	}
	if report.Noop {
		return []string{"funds already present, nothing to do"}, nil
	}
	return []string{
		fmt.Sprintf("funds created: %d", report.CreatedFunds),
		fmt.Sprintf("investors created: %d", report.CreatedInvestors),
		fmt.Sprintf("investments created: %d", report.CreatedInvestments),
	}, nil
}

func runDryRun(opts *options) ([]string, error) {
	db, err := openDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()

	var fundCount int64
	if err := db.Model(&domain.Fund{}).Count(&fundCount).Error; err != nil {
		return nil, fmt.Errorf("count funds: %w", err)
	}
	if fundCount > 0 {
		return []string{fmt.Sprintf("funds already present (%d), apply would be a no-op", fundCount)}, nil
	}
	return []string{"apply would insert 3 funds, 3 investors, 3 investments"}, nil
}
