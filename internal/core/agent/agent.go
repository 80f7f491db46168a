// Package agent binds a model, an instruction string and a set of tools, and
// runs the model/tool loop until the model produces a final answer.
package agent

import (
	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/core/tools"
)

const SummarizerName = "PDF Summarizer and Quiz Generator"

// SummarizerInstructions forces the model through the extraction tool before
// it writes anything about a document.
const SummarizerInstructions = "You are a helpful assistant that summarizes academic PDFs and generates quizzes (MCQs or mixed). " +
	"You have access to a tool called `pdf_text_extractor` which can read the content of a PDF file " +
	"given its file path. When a user asks you to summarize or create a quiz from a PDF, " +
	"you MUST first use the `pdf_text_extractor` tool with the provided file path to get the text, " +
	"and then proceed with summarization or quiz generation using that extracted text. " +
	"Always use the original extracted PDF text for quiz generation. " +
	"If the `pdf_text_extractor` tool returns an error or empty text, inform the user."

// Agent is a configured binding of a model, instructions and tools.
type Agent struct {
	Name         string
	Instructions string
	Model        core.LLMProvider
	Tools        []tools.Tool
}

// NewSummarizerAgent returns the document agent used by every study action.
func NewSummarizerAgent(model core.LLMProvider, ts ...tools.Tool) *Agent {
	return &Agent{
		Name:         SummarizerName,
		Instructions: SummarizerInstructions,
		Model:        model,
		Tools:        ts,
	}
}

func (a *Agent) toolSpecs() []core.ToolSpec {
	specs := make([]core.ToolSpec, 0, len(a.Tools))
	for _, t := range a.Tools {
		specs = append(specs, t.Spec())
	}
	return specs
}

func (a *Agent) tool(name string) (tools.Tool, bool) {
	for _, t := range a.Tools {
		if t.Spec().Name == name {
			return t, true
		}
	}
	return nil, false
}
