package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/message"
)

// TranslateCmd translates a source file between Java and C.
var TranslateCmd = &cobra.Command{
	Use:   "translate [FILE]",
	Short: "Translate a Java or C source file",
	Long: `Translate source code between Java and C.

Reads FILE, or stdin when FILE is omitted or "-". The source language is
inferred from the file extension unless --from is given. The translated code
is written to stdout; status goes to stderr.

Examples:
  codeswitch translate Main.java
  codeswitch translate --to java hello.c > Hello.java
  cat Main.java | codeswitch translate --from java --to c --no-validate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	TranslateCmd.Flags().String("from", "", "Source language (java, c); inferred from FILE if omitted")
	TranslateCmd.Flags().String("to", "", "Target language (java, c); defaults to the other language")
	TranslateCmd.Flags().Bool("no-validate", false, "Skip source and target syntax validation")
	TranslateCmd.Flags().BoolP("json", "j", false, "Print the full result as JSON")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	from, err := resolveLanguage(fromFlag, path, "from")
	if err != nil {
		return err
	}
	to, err := targetLanguage(toFlag, from)
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

	res := a.pipeline.Translate(cmd.Context(), message.TranslationRequest{
		SourceCode:     string(code),
		SourceLanguage: string(from),
		TargetLanguage: string(to),
		ValidateSyntax: !noValidate,
	})
	return printResult(res, jsonOutput)
}

// targetLanguage defaults to the other supported language.
func targetLanguage(flag string, from language.Language) (language.Language, error) {
	if flag != "" {
		return language.Parse(flag)
	}
	for _, l := range language.Supported() {
		if l != from {
			return l, nil
		}
	}
	return "", errors.New("no target language available")
}

// printResult writes the translation to stdout and a status line to stderr.
// A failed translation is returned as an error after any JSON is printed.
func printResult(res *message.TranslationResult, jsonOutput bool) error {
	if jsonOutput {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.Success {
		fmt.Println(res.TranslatedCode)
	}

	switch {
	case !res.Success:
		err := errors.New(res.Message)
		if hint := failureHint(res.Cause); hint != "" {
			err = errors.WithHint(err, hint)
		}
		return err
	case errors.Is(res.Cause, errors.ErrTargetSyntaxInvalid):
		stderr(pterm.Warning).Println(res.Message)
	default:
		stderr(pterm.Success).Println(res.Message)
	}
	return nil
}

var failureHints = []struct {
	kind error
	hint string
}{
	{errors.ErrSameLanguage, "pass a different --to language"},
	{errors.ErrUnsupportedLanguage, "supported languages are java and c"},
	{errors.ErrSourceSyntaxInvalid, "run codeswitch validate for the diagnostic, or pass --no-validate"},
	{errors.ErrBackendAuth, "set backend.anthropic.api_key or ANTHROPIC_API_KEY"},
	{errors.ErrBackendRateLimited, "retry later or set backend.requests_per_minute"},
	{errors.ErrBackendUnavailable, "the backend is temporarily unavailable, retry later"},
	{errors.ErrOCRFailure, "check that tesseract and its language data are installed"},
	{errors.ErrEmptyExtractedText, "use a sharper image with larger text"},
}

// failureHint maps a result cause to remediation text.
func failureHint(cause error) string {
	for _, h := range failureHints {
		if errors.Is(cause, h.kind) {
			return h.hint
		}
	}
	return ""
}
