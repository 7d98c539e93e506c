package cmd

import (
	"github.com/maxkimambo/envup/internal/config"
	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/executor"
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/maxkimambo/envup/internal/maintenance"
	"github.com/maxkimambo/envup/internal/utils"
	"github.com/spf13/cobra"
)

// newRunner is replaced in tests
var newRunner = func() maintenance.Runner {
	return maintenance.NewExecRunner()
}

// selection holds the task selection and tuning flags shared by update and plan
type selection struct {
	Only        []string
	Skip        []string
	MaxParallel int
	NodeVersion string
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("only", nil, "Run only these task ids (comma separated or repeated)")
	cmd.Flags().StringSlice("skip", nil, "Skip these task ids (comma separated or repeated)")
	cmd.Flags().Int("max-parallel", 0, "Maximum number of tasks to run at once, 0 for unbounded (overrides config)")
	cmd.Flags().String("node-version", "", "Node.js version for fnm to install (overrides config)")
}

func createSelection(cmd *cobra.Command, cfg *config.Config) (*selection, error) {
	only, _ := cmd.Flags().GetStringSlice("only")
	skip, _ := cmd.Flags().GetStringSlice("skip")

	sel := &selection{
		Only:        utils.NormalizeIDs(only),
		Skip:        utils.NormalizeIDs(skip),
		MaxParallel: cfg.MaxParallel,
		NodeVersion: cfg.NodeVersion,
	}

	if cmd.Flags().Changed("max-parallel") {
		sel.MaxParallel, _ = cmd.Flags().GetInt("max-parallel")
		if sel.MaxParallel < 0 {
			return nil, apperrors.NewConfigInvalidError("--max-parallel", "must be 0 (unbounded) or positive")
		}
	}
	if cmd.Flags().Changed("node-version") {
		sel.NodeVersion, _ = cmd.Flags().GetString("node-version")
	}

	return sel, nil
}

// disabledIDs lists the catalog tasks the config file disables. An explicit
// --only re-enables a disabled task.
func disabledIDs(cfg *config.Config, only []string, catalog []maintenance.Definition) []string {
	known := make(map[string]bool, len(catalog))
	var ids []string
	for _, d := range catalog {
		known[d.ID] = true
		if cfg.Disabled(d.ID) && !utils.ContainsID(only, d.ID) {
			ids = append(ids, d.ID)
		}
	}
	for _, id := range cfg.Disable {
		if !known[id] {
			logger.User.Warnf("Config file disables unknown task %q", id)
		}
	}
	return ids
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Op.WithFields(map[string]interface{}{"path": cfg.Path}).Debug("Loaded config file")
	}
	return cfg, nil
}

// buildExecutor loads the config, selects tasks and registers them
func buildExecutor(cmd *cobra.Command, runner maintenance.Runner, execConfig *executor.ExecutorConfig) (*executor.Executor, []maintenance.Definition, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	sel, err := createSelection(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	cfg.NodeVersion = sel.NodeVersion
	execConfig.MaxParallelTasks = sel.MaxParallel

	catalog := maintenance.Catalog(runner, cfg)
	skip := utils.NormalizeIDs(append(sel.Skip, disabledIDs(cfg, sel.Only, catalog)...))
	defs, err := maintenance.Select(catalog, sel.Only, skip)
	if err != nil {
		return nil, nil, err
	}

	e := executor.NewExecutor(execConfig)
	if err := maintenance.Register(e, runner, defs); err != nil {
		return nil, nil, err
	}

	logger.Op.WithFields(map[string]interface{}{
		"tasks":        len(defs),
		"max_parallel": sel.MaxParallel,
		"node_version": sel.NodeVersion,
	}).Debug("Executor configured")

	return e, defs, nil
}
