/*
PURPOSE:
  Builds the instruction text sent as the user turn of a chat request.

REQUIREMENTS:
  User-specified:
  - Terse style: language tag plus the code in a fence, "return only the fix".
  - Review style: fixed three-part answer (summary, defect list, fixed code)
    with literal section headers.

  Implementation-discovered:
  - Instructions are in English, headers are in Vietnamese. Keeping the
    headers in one fixed language keeps them uniform across models.
  - Code is embedded verbatim. No escaping of any kind.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner, Reviewer)
  - Uses: internal/model

ERROR HANDLING:
  - None. Model output that ignores the headers is accepted as-is downstream.

IMPLEMENTATION RULES:
  - Headers are emitted unconditionally, whatever the code contains.

USAGE:
  p := prompt.Terse(tc)
  p := prompt.Review(code, "python")

SELF-HEALING INSTRUCTIONS:
  - If models drift from the structure, tighten the wording here, not the headers.

RELATED FILES:
  - internal/engine/runner.go
  - internal/engine/review.go

MAINTENANCE:
  - Update Headers() together with any UI that splits on them.
*/

package prompt

import (
	"fmt"
	"strings"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// Style selects how a test case is turned into a prompt.
type Style string

const (
	StyleTerse  Style = "terse"
	StyleReview Style = "review"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return s == StyleTerse || s == StyleReview
}

// Section headers of the review answer.
const (
	HeaderSummary = "### 1. Tóm tắt code"
	HeaderDefects = "### 2. Danh sách lỗi hoặc nguy cơ bug"
	HeaderFix     = "### 3. Gợi ý tối ưu"
)

// ReviewSystemPrompt is sent as the system turn alongside Review prompts.
const ReviewSystemPrompt = "You strictly follow the requested format."

const fence = "```"

// Headers returns the review section headers in answer order.
func Headers() []string {
	return []string{HeaderSummary, HeaderDefects, HeaderFix}
}

// Terse asks for the corrected code only.
func Terse(tc model.TestCase) string {
	return fmt.Sprintf("Fix this %s code. Return ONLY the fixed code block:\n%s\n%s\n%s",
		tc.Language, fence, tc.Code, fence)
}

// Review asks for the three-part structured review of code.
// fenceLang tags the code fences; empty means "python".
func Review(code, fenceLang string) string {
	if fenceLang == "" {
		fenceLang = "python"
	}

	var sb strings.Builder
	sb.WriteString("You are a Senior Code Reviewer. Analyze the code below.\n")
	sb.WriteString("You MUST reply using EXACTLY the following structure with these specific headers in Vietnamese:\n\n")

	sb.WriteString(HeaderSummary + "\n")
	sb.WriteString("(Summarize what the code does in 1-2 sentences in Vietnamese)\n\n")

	sb.WriteString(HeaderDefects + "\n")
	sb.WriteString("(List logic errors, syntax errors, or security issues using bullet points in Vietnamese)\n")
	sb.WriteString("- Lỗi 1: ...\n")
	sb.WriteString("- Lỗi 2: ...\n\n")

	sb.WriteString(HeaderFix + "\n")
	fmt.Fprintf(&sb, "(Provide the full fixed and optimized code inside a %s code block)\n", displayLang(fenceLang))
	fmt.Fprintf(&sb, "%s%s\n# Code đã sửa\n%s\n\n", fence, fenceLang, fence)

	sb.WriteString("---\nCODE TO ANALYZE:\n")
	fmt.Fprintf(&sb, "%s%s\n%s\n%s\n", fence, fenceLang, code, fence)
	return sb.String()
}

// ForCase builds the prompt for a fixture case in the given style.
func ForCase(style Style, tc model.TestCase) string {
	if style == StyleReview {
		return Review(tc.Code, strings.ToLower(tc.Language))
	}
	return Terse(tc)
}

// Messages wraps a prompt into the chat turns for style.
// Review prompts carry the format-enforcing system turn.
func Messages(style Style, userPrompt string) []model.Message {
	if style == StyleReview {
		return []model.Message{
			{Role: model.RoleSystem, Content: ReviewSystemPrompt},
			{Role: model.RoleUser, Content: userPrompt},
		}
	}
	return []model.Message{{Role: model.RoleUser, Content: userPrompt}}
}

func displayLang(tag string) string {
	switch tag {
	case "c", "cpp", "c++":
		return strings.ToUpper(tag)
	case "":
		return "Python"
	}
	return strings.ToUpper(tag[:1]) + tag[1:]
}
