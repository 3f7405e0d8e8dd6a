// Package repl implements the formulacli command tree: a "set" command that
// stores a formula or literal at an address and prints its recalculated
// value, an "eval" command that evaluates a formula against an otherwise
// empty workbook, and a "print" command that round-trips a formula through
// Parse and Print. Every invocation is tagged with a request ID (uuid) so a
// session's structured log can be correlated, mirroring the session/
// request-ID convention the retrieved pack's service-shaped repos use.
package repl

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	formula "github.com/oakmoss/formulacore"
)

// NewRootCommand builds the formulacli command tree, logging through logger.
func NewRootCommand(logger zerolog.Logger) *cobra.Command {
	var sheetName string

	root := &cobra.Command{
		Use:   "formulacli",
		Short: "Demo harness for the formula evaluation engine",
		Long:  "formulacli is a small demo around the formula package's pure evaluator, dependency analyzer, and printer.",
	}
	root.PersistentFlags().StringVar(&sheetName, "sheet", "Sheet1", "worksheet name to operate on")

	root.AddCommand(newSetCommand(logger, &sheetName))
	root.AddCommand(newPrintCommand(logger))
	root.AddCommand(newEvalCommand(logger, &sheetName))
	return root
}

func newSetCommand(logger zerolog.Logger, sheetName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <address> <formula-or-value>",
		Short: "Store a formula or literal at an address and print its recalculated value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := uuid.New()
			log := logger.With().Str("request_id", requestID.String()).Str("sheet", *sheetName).Logger()

			address, source := args[0], args[1]
			addr, err := parseCellRef(address)
			if err != nil {
				log.Error().Err(err).Str("address", address).Msg("invalid address")
				return err
			}

			wb := formula.NewWorkbook()
			if _, err := wb.AddSheet(*sheetName); err != nil {
				return err
			}
			if err := wb.SetFormula(*sheetName, addr, source); err != nil {
				log.Error().Err(err).Str("source", source).Msg("set failed")
				return err
			}

			value, err := wb.Get(*sheetName + "!" + address)
			if err != nil {
				return err
			}
			log.Info().Str("address", address).Str("result", value.String()).Msg("recalculated")
			fmt.Fprintln(cmd.OutOrStdout(), value.String())
			return nil
		},
	}
}

func newPrintCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "print <formula>",
		Short: "Parse a formula and print its canonical rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := uuid.New()
			log := logger.With().Str("request_id", requestID.String()).Logger()

			expr, err := formula.Parse(args[0])
			if err != nil {
				log.Error().Err(err).Str("source", args[0]).Msg("parse failed")
				return err
			}
			rendered := formula.Print(expr)
			log.Info().Str("source", args[0]).Str("printed", rendered).Msg("parsed")
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newEvalCommand(logger zerolog.Logger, sheetName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <formula>",
		Short: "Evaluate a formula against an empty workbook, stored at A1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := uuid.New()
			log := logger.With().Str("request_id", requestID.String()).Logger()

			wb := formula.NewWorkbook()
			if _, err := wb.AddSheet(*sheetName); err != nil {
				return err
			}
			if err := wb.SetFormula(*sheetName, formula.ARef{}, args[0]); err != nil {
				log.Error().Err(err).Msg("eval failed")
				return err
			}
			value, err := wb.Get(*sheetName + "!A1")
			if err != nil {
				return err
			}
			log.Info().Str("source", args[0]).Str("result", value.String()).Msg("evaluated")
			fmt.Fprintln(cmd.OutOrStdout(), value.String())
			return nil
		},
	}
}

// parseCellRef decodes a plain "A1"-style address (no sheet qualifier, no
// $ anchors — those only matter inside a parsed formula, not on the CLI's
// own --sheet/address arguments) into an ARef.
func parseCellRef(s string) (formula.ARef, error) {
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	letters, digits := s[:i], s[i:]
	if letters == "" || digits == "" {
		return formula.ARef{}, fmt.Errorf("formulacli: invalid address %q", s)
	}
	col, err := formula.ColumnFromLetter(letters)
	if err != nil {
		return formula.ARef{}, err
	}
	row := 0
	for _, ch := range digits {
		row = row*10 + int(ch-'0')
	}
	if row < 1 {
		return formula.ARef{}, fmt.Errorf("formulacli: invalid row in address %q", s)
	}
	return formula.ARef{Col: col, Row: formula.Row(row - 1)}, nil
}
