package migrate

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

var managedModels = []struct {
	name  string
	model any
}{
	{"funds", &domain.Fund{}},
	{"investors", &domain.Investor{}},
	{"investments", &domain.Investment{}},
	{"idempotency_records", &domain.IdempotencyRecord{}},
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the registry database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file loaded before reading configuration")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "emit a machine-readable JSON result")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "abort if the command runs longer than this")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply the schema to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate up", "up", func(ctx context.Context) ([]string, error) {
				return runUp(opts)
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report which managed tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate status", "status", func(ctx context.Context) ([]string, error) {
				return runStatus(opts)
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "List the tables an up run would create",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate plan", "plan", func(ctx context.Context) ([]string, error) {
				return runPlan(opts)
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

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}

func runUp(opts *options) ([]string, error) {
	_, db, err := loadConfigDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	details := make([]string, 0, len(managedModels))
	for _, m := range managedModels {
		details = append(details, fmt.Sprintf("%s: present", m.name))
	}
	return details, nil
}

func runStatus(opts *options) ([]string, error) {
	_, db, err := loadConfigDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()

	details := make([]string, 0, len(managedModels))
	for _, m := range managedModels {
		state := "missing"
		if db.Migrator().HasTable(m.model) {
			state = "present"
		}
		details = append(details, fmt.Sprintf("%s: %s", m.name, state))
	}
	return details, nil
}

func runPlan(opts *options) ([]string, error) {
	_, db, err := loadConfigDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()

	details := []string{}
	for _, m := range managedModels {
		if !db.Migrator().HasTable(m.model) {
			details = append(details, fmt.Sprintf("create table %s", m.name))
		}
	}
	if len(details) == 0 {
		details = append(details, "schema up to date")
	}
	return details, nil
}
