package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/trdani/ai-powered-changelog/internal/changelog"
)

// DefaultDiffLimit is the number of diff bytes kept per commit.
const DefaultDiffLimit = 4000

const dateLayout = "2006-01-02"

const preamble = `You are the friendly owner of a software project writing a changelog for non-technical people who use the software every day. They care about what the software does for them, not how it is built.

Below are the most recent commits of the project, newest first. For each commit you get its date, author, message, the files it touched and an excerpt of its diff.

Instructions:
- Summarize the changes in plain, friendly English. Avoid jargon such as "refactored" or "optimized".
- Group entries by date.
- Emphasize user-visible features, improvements people will notice, and fixes for problems that affected them.
- Omit purely internal changes: code cleanups, refactors, dependency bumps, typo fixes in code comments, test-only changes.
- If a commit's user impact is unclear, skip it or summarize it as "Behind-the-scenes improvements" without details.
- Order entries newest first.
- Output only a Markdown list. Each item starts with the date in YYYY-MM-DD format, then " - ", then one or two short, upbeat sentences.
- Do not include commit hashes, author names, headings or any text outside the list.

Example items:
- 2025-03-05 - Added a search bar so you can find your files faster!
- 2025-03-02 - Fixed a glitch that made the app crash when saving your work.
`

// NewPromptBuilder returns a changelog.PromptBuilder that keeps at most
// diffLimit bytes of each commit's diff.
func NewPromptBuilder(diffLimit int) changelog.PromptBuilder {
	return func(commits []changelog.CommitRecord) string {
		return BuildPrompt(commits, diffLimit)
	}
}

// BuildPrompt renders commits after the fixed instructions. The output depends
// only on its arguments. A diffLimit <= 0 leaves diffs out.
func BuildPrompt(commits []changelog.CommitRecord, diffLimit int) string {
	var sb strings.Builder

	sb.WriteString(preamble)
	sb.WriteString("\n---\n")

	for i, c := range commits {
		sb.WriteString(fmt.Sprintf("\n### Commit %d/%d\n", i+1, len(commits)))
		sb.WriteString(fmt.Sprintf("Date: %s\n", c.Date.Format(dateLayout)))
		if c.Author != "" {
			sb.WriteString(fmt.Sprintf("Author: %s\n", c.Author))
		}
		sb.WriteString("Message:\n")
		sb.WriteString(indent(c.Message))
		sb.WriteString("\n")

		if len(c.Files) > 0 {
			sb.WriteString("Files changed:\n")
			for _, f := range c.Files {
				sb.WriteString(formatFile(f))
			}
		}

		if diffLimit > 0 && strings.TrimSpace(c.Diff) != "" {
			excerpt, truncated := truncate(c.Diff, diffLimit)
			sb.WriteString("Diff excerpt:\n```diff\n")
			sb.WriteString(strings.TrimRight(excerpt, "\n"))
			sb.WriteString("\n```\n")
			if truncated {
				sb.WriteString(fmt.Sprintf("[diff truncated: %d of %d bytes shown]\n", len(excerpt), len(c.Diff)))
			}
		}
	}

	return sb.String()
}

func formatFile(f changelog.FileChange) string {
	status := f.Status
	if status == "" {
		status = "M"
	}
	path := f.Path
	if f.PreviousPath != "" && f.PreviousPath != f.Path {
		path = f.PreviousPath + " -> " + f.Path
	}
	return fmt.Sprintf("  %s %s (+%d -%d)\n", status, path, f.Additions, f.Deletions)
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(strings.TrimSpace(text), "\n", "\n  ")
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
