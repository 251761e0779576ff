package commands

import (
	"fmt"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/message"
)

// OcrCmd extracts code from an image, optionally translating it.
var OcrCmd = &cobra.Command{
	Use:   "ocr IMAGE",
	Short: "Extract source code from an image",
	Long: `Run tesseract over IMAGE and print the cleaned text.

With --from, the extracted code is translated as well, exactly as the
POST /translate/image endpoint would.

Examples:
  codeswitch ocr screenshot.png
  codeswitch ocr --from java --to c screenshot.png`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	OcrCmd.Flags().String("from", "", "Translate the extracted code from this language (java, c)")
	OcrCmd.Flags().String("to", "", "Target language; defaults to the other language")
	OcrCmd.Flags().Bool("no-validate", false, "Skip syntax validation when translating")
	OcrCmd.Flags().BoolP("json", "j", false, "Print the full result as JSON")
}

func runOCR(cmd *cobra.Command, args []string) error {
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	image, err := readInput(args[0])
	if err != nil {
		return err
	}
	contentType := http.DetectContentType(image)

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.ocr == nil {
		return errors.WithHint(errors.New("OCR is disabled by configuration"),
			"set ocr.enabled: true or CODESWITCH_OCR_ENABLED=true")
	}

	if fromFlag != "" {
		from, err := resolveLanguage(fromFlag, "", "from")
		if err != nil {
			return err
		}
		to, err := targetLanguage(toFlag, from)
		if err != nil {
			return err
		}
		res := a.pipeline.TranslateImage(cmd.Context(), message.ImageTranslationRequest{
			Image:          image,
			ContentType:    contentType,
			SourceLanguage: string(from),
			TargetLanguage: string(to),
			ValidateSyntax: !noValidate,
		})
		return printResult(res, jsonOutput)
	}

	res := a.ocr.ExtractText(cmd.Context(), image, contentType)
	if jsonOutput {
		return printJSON(res)
	}
	if !res.Success {
		return errors.New(res.ErrorMessage)
	}
	fmt.Println(res.Text)
	stderr(pterm.Info).Printfln("OCR confidence: %.1f%%", res.Confidence*100)
	return nil
}
