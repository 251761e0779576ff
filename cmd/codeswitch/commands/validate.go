package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// ValidateCmd checks the syntax of a source file.
var ValidateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check the syntax of a Java or C source file",
	Long: `Check syntax with the configured compiler, falling back to structural
heuristics when the compiler is not installed. Exits non-zero when the code
is invalid.

Examples:
  codeswitch validate Main.java
  codeswitch validate --lang c < hello.c`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		langFlag, _ := cmd.Flags().GetString("lang")

		lang, err := resolveLanguage(langFlag, path, "lang")
		if err != nil {
			return err
		}
		code, err := readInput(path)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.pipeline.Validate(cmd.Context(), string(code), string(lang))
		if err != nil {
			return err
		}
		if !out.Valid {
			where := ""
			if out.ErrorLine != nil {
				where = fmt.Sprintf(" (line %d", *out.ErrorLine)
				if out.ErrorColumn != nil {
					where += fmt.Sprintf(", column %d", *out.ErrorColumn)
				}
				where += ")"
			}
			return errors.Newf("%s syntax invalid%s: %s", lang.Title(), where, out.ErrorMessage)
		}

		msg := out.ErrorMessage
		if msg == "" {
			msg = lang.Title() + " syntax is valid"
		}
		pterm.Success.Println(msg)
		return nil
	},
}

func init() {
	ValidateCmd.Flags().String("lang", "", "Language of the code (java, c); inferred from FILE if omitted")
}
