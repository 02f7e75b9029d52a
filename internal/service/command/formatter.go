package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/bizbot/internal/core"
)

type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return fmt.Sprintf("⚙️️ **%s**\n\n", title)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (f *ResponseFormatter) Error(operation string, err error) string {
	return fmt.Sprintf("❌ **Command Error**\n\n**Issue**: %s\n", core.UserMessage(err))
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return fmt.Sprintf("**Usage**:\n```%s```\n", command)
}

func (f *ResponseFormatter) Examples(examples []string) string {
	var sb strings.Builder
	sb.WriteString("**Examples**:\n")
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("`%s`\n", ex))
	}
	return sb.String()
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("› %s\n", item))
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return fmt.Sprintf("**Tip**: %s\n", text)
}

func (f *ResponseFormatter) Status(label string, ok bool) string {
	mark := "✅"
	if !ok {
		mark = "❌"
	}
	return fmt.Sprintf("%s **%s**\n", mark, label)
}

// Report renders an ingestion summary for a chat surface.
func (f *ResponseFormatter) Report(report *core.IngestionReport) string {
	var sb strings.Builder
	sb.WriteString(f.Label("Source", report.SourceID))
	sb.WriteString(f.Label("Written", fmt.Sprintf("%d", report.Written)))
	sb.WriteString(f.Label("Skipped", fmt.Sprintf("%d", report.Skipped)))
	if report.Pruned > 0 {
		sb.WriteString(f.Label("Pruned", fmt.Sprintf("%d", report.Pruned)))
	}
	for _, e := range report.Errors {
		sb.WriteString(fmt.Sprintf("❌ `%s` [%s] %s\n", e.ChunkID, e.Tag, e.Message))
	}
	return sb.String()
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}
