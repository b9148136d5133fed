package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <file.json>",
	Short: "Validate a JSON file against an embedded schema",
	Long:  "Validate a stored result or stage record against one of the embedded schemas.\n\nSchemas: " + strings.Join(schemas.Names(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	name, path := strings.TrimSuffix(args[0], ".schema.json"), args[1]
	if err := schemas.ValidateFile(name, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s document\n", path, name)
	return nil
}
