package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/config"
	"github.com/uzzielvz/cartera-generator/internal/core/pipeline"
	"github.com/uzzielvz/cartera-generator/internal/logging"
)

const version = "0.3.0"

var (
	configPath string
	inputDir   string
	outputPath string
	reference  string
)

var rootCmd = &cobra.Command{
	Use:     "cartera",
	Short:   "Generate the CARTERA and MORA workbook from the core-system exports",
	Version: version,
	Long: `Reads the aging, portfolio status, collections and savings exports from the
input directory, reconciles them per group and writes the CARTERA and MORA
sheets to one formatted workbook. When a reference workbook is configured the
output is compared with it column by column.`,
	Example: `  # Run with cartera.yaml from ./configs or the working directory
  $ cartera

  # Point at another snapshot
  $ cartera --input data/2025-09 --output output/cartera_septiembre.xlsx

  # Compare an existing output with the reference workbook
  $ cartera validate output/cartera_generada.xlsx --reference machote.xlsm`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runBatch,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: cartera.yaml in ./configs or .)")
	rootCmd.PersistentFlags().StringVar(&reference, "reference", "", "reference workbook; overrides reference.path")
	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "", "input directory; overrides input.dir")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output workbook; overrides output.path")

	rootCmd.AddCommand(validateCmd)
}

// setup loads the config, applies flag overrides and builds the run logger.
func setup() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if inputDir != "" {
		cfg.Input.Dir = inputDir
	}
	if outputPath != "" {
		cfg.Output.Path = outputPath
	}
	if reference != "" {
		cfg.Reference.Path = reference
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, closeLog, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartera: %v\n", err)
		return err
	}
	defer closeLog()

	res, err := pipeline.New(cfg, logger, nil).Run()
	if err != nil {
		logger.Error("run aborted", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups in CARTERA, %d in MORA\n",
		res.OutputPath, len(res.Cartera.Rows), len(res.Mora.Rows))
	if res.Comparison != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "validation: %d common groups, %d differences\n",
			res.Comparison.Common, res.Comparison.Differences())
	}
	return nil
}
