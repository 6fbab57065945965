package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate [output]",
	Short: "Compare a generated workbook with the reference workbook",
	Long: `Reads the CARTERA sheet of a generated workbook and of the reference workbook,
matches rows by group id and reports every compared column whose values differ
by more than the tolerance. Without an argument the configured output.path is used.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartera: %v\n", err)
		return err
	}
	defer closeLog()

	output := cfg.Output.Path
	if len(args) == 1 {
		output = args[0]
	}

	cmp, err := pipeline.New(cfg, logger, nil).Validate(output)
	if err != nil {
		logger.Error("validation aborted", zap.Error(err))
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "output %d rows, reference %d rows, %d in common\n", cmp.OutputRows, cmp.ReferenceRows, cmp.Common)
	if len(cmp.OnlyOutput) > 0 {
		fmt.Fprintf(w, "only in output: %v\n", cmp.OnlyOutput)
	}
	if len(cmp.OnlyReference) > 0 {
		fmt.Fprintf(w, "only in reference: %v\n", cmp.OnlyReference)
	}
	for _, col := range cmp.Columns {
		if col.Differences == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: %d differences\n", col.Name, col.Differences)
		for _, s := range col.Samples {
			fmt.Fprintf(w, "  %s output=%v reference=%v\n", s.GroupID, s.Output, s.Reference)
		}
	}
	return nil
}
