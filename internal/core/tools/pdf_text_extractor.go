package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/markdave123-py/Pagewise/internal/core"
)

const PDFTextExtractorName = "pdf_text_extractor"

var _ Tool = (*PDFTextExtractor)(nil)

var pdfTextExtractorParams = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"file_path": map[string]any{
			"type":        "string",
			"description": "Path to the PDF file on the server's local storage.",
		},
	},
	"required":             []any{"file_path"},
	"additionalProperties": false,
}

// PDFTextExtractor exposes a core.TextExtractor to the agent.
// It reports missing files and empty extractions as plain sentences rather
// than errors so the model can relay them to the user.
type PDFTextExtractor struct {
	extractor core.TextExtractor
	validator *ArgsValidator
}

func NewPDFTextExtractor(extractor core.TextExtractor) (*PDFTextExtractor, error) {
	v, err := NewArgsValidator(PDFTextExtractorName, pdfTextExtractorParams)
	if err != nil {
		return nil, err
	}
	return &PDFTextExtractor{extractor: extractor, validator: v}, nil
}

func (t *PDFTextExtractor) Spec() core.ToolSpec {
	return core.ToolSpec{
		Name: PDFTextExtractorName,
		Description: "Extracts text from a PDF file located at the given file_path. " +
			"Returns the extracted text as a string.",
		Parameters: pdfTextExtractorParams,
	}
}

// Call validates args and runs the extraction. The error return is reserved
// for malformed arguments.
func (t *PDFTextExtractor) Call(ctx context.Context, args map[string]any) (string, error) {
	if err := t.validator.Validate(args); err != nil {
		return "", err
	}
	path, _ := args["file_path"].(string)
	return t.Run(ctx, path), nil
}

// Run returns the extracted text, or a sentence describing why there is none.
func (t *PDFTextExtractor) Run(ctx context.Context, path string) string {
	if _, err := os.Stat(path); err != nil {
		return FileNotFoundMessage(path)
	}

	text := t.extractor.Extract(ctx, path)
	if text == "" {
		return EmptyExtractionMessage(path)
	}
	return text
}

func FileNotFoundMessage(path string) string {
	return fmt.Sprintf("File not found at %s", path)
}

func EmptyExtractionMessage(path string) string {
	return fmt.Sprintf("Could not extract text from %s or PDF is empty.", path)
}
