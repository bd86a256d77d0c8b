package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/logging"
)

const toolAnalyzeReflection = "analyze_reflection"

type analyzeInput struct {
	Text     string `json:"text" jsonschema:"The reflection text to analyze"`
	Title    string `json:"title,omitempty" jsonschema:"Optional title of the reflection"`
	Category string `json:"category,omitempty" jsonschema:"Optional category such as Arbeit or Studium"`
}

// analyzeOutput mirrors analysis.Result with plain types so the inferred
// output schema matches what is serialized.
type analyzeOutput struct {
	Depth          int      `json:"depth" jsonschema:"Depth of reflection, 0-10"`
	Coherence      int      `json:"coherence" jsonschema:"Coherence, 0-10"`
	Metacognition  int      `json:"metacognition" jsonschema:"Metacognitive awareness, 0-10"`
	Actionable     int      `json:"actionable" jsonschema:"Actionable insight, 0-10"`
	Overall        float64  `json:"overall" jsonschema:"Mean of the four scores, one decimal"`
	Level          string   `json:"level" jsonschema:"descriptive, analytical or critical"`
	Feedback       string   `json:"feedback" jsonschema:"One sentence of feedback"`
	Prompts        []string `json:"prompts" jsonschema:"Follow-up questions, one to three"`
	WordCount      int      `json:"word_count"`
	SentenceCount  int      `json:"sentence_count"`
	ParagraphCount int      `json:"paragraph_count"`
	Source         string   `json:"source" jsonschema:"short_text, scored or fallback"`
	PromptSource   string   `json:"prompt_source" jsonschema:"llm, rules or fixed"`
}

func newAnalyzeOutput(res *analysis.Result) analyzeOutput {
	prompts := res.Prompts
	if prompts == nil {
		prompts = []string{}
	}
	return analyzeOutput{
		Depth:          res.KPIs.Depth,
		Coherence:      res.KPIs.Coherence,
		Metacognition:  res.KPIs.Metacognition,
		Actionable:     res.KPIs.Actionable,
		Overall:        res.Overall,
		Level:          res.Level.String(),
		Feedback:       res.Feedback,
		Prompts:        prompts,
		WordCount:      res.Stats.WordCount,
		SentenceCount:  res.Stats.SentenceCount,
		ParagraphCount: res.Stats.ParagraphCount,
		Source:         string(res.Source),
		PromptSource:   string(res.PromptSource),
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: toolAnalyzeReflection,
		Description: "Score a written reflection on depth, coherence, metacognition and actionable insight (0-10 each), " +
			"classify it as descriptive, analytical or critical, and return feedback plus up to three follow-up questions.",
	}, s.handleAnalyze)
}

func (s *Server) handleAnalyze(ctx context.Context, _ *mcp.CallToolRequest, args analyzeInput) (*mcp.CallToolResult, analyzeOutput, error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, toolAnalyzeReflection)
	defer s.metrics.DecrementActive(ctx, toolAnalyzeReflection)

	res := s.engine.Analyze(ctx, analysis.Input{
		Text:     args.Text,
		Title:    args.Title,
		Category: args.Category,
	})
	s.metrics.RecordInvocation(ctx, toolAnalyzeReflection, time.Since(start), nil)

	s.logger.Debug(ctx, "tool call completed",
		zap.String("tool", toolAnalyzeReflection),
		zap.String("level", res.Level.String()),
		logging.TextLength("text", args.Text),
	)

	out := newAnalyzeOutput(res)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summarize(out)}},
	}, out, nil
}

// summarize renders the result as a short German text block for clients that
// ignore structured content.
func summarize(out analyzeOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gesamtwert: %.1f/10 (%s)\n", out.Overall, out.Level)
	fmt.Fprintf(&b, "Tiefe %d, Kohärenz %d, Metakognition %d, Handlungsorientierung %d\n",
		out.Depth, out.Coherence, out.Metacognition, out.Actionable)
	fmt.Fprintf(&b, "Feedback: %s\n", out.Feedback)
	b.WriteString("Weiterführende Fragen:\n")
	for i, p := range out.Prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
