package conv

import "testing"

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain answer",
			input:    "We open at nine on weekdays",
			expected: "We open at nine on weekdays\n",
		},
		{
			name:     "bold",
			input:    "**Opening hours**",
			expected: "<strong>Opening hours</strong>\n",
		},
		{
			name:     "italic citation footer",
			input:    "_Sources: site_",
			expected: "<em>Sources: site</em>\n",
		},
		{
			name:     "inline code",
			input:    "`source-id`",
			expected: "<code>source-id</code>\n",
		},
		{
			name:     "code block with language",
			input:    "```go\nfunc main() {}\n```",
			expected: "<pre><code class=\"language-go\">func main() {}\n</code></pre>\n",
		},
		{
			name:     "blockquote",
			input:    "> quoted evidence",
			expected: "<blockquote>\nquoted evidence\n</blockquote>\n",
		},
		{
			name:     "link kept without target attribute",
			input:    "[site](https://example.com)",
			expected: "<a href=\"https://example.com\">site</a>\n",
		},
		{
			name:     "headers flattened to text",
			input:    "# Report",
			expected: "Report\n",
		},
		{
			name:     "strikethrough",
			input:    "~~wrong~~",
			expected: "<del>wrong</del>\n",
		},
		{
			name:     "script tags removed",
			input:    "<script>alert('xss')</script>",
			expected: "\n",
		},
		{
			name:     "raw underline passes through",
			input:    "<u>kept</u>",
			expected: "<u>kept</u>\n",
		},
		{
			name:     "mixed formatting",
			input:    "**Bold** and *italic* with `code`",
			expected: "<strong>Bold</strong> and <em>italic</em> with <code>code</code>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownToTelegramHTML([]byte(tt.input)); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
