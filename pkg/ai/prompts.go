package ai

import (
	"fmt"
	"strings"
)

const gradingSystemPrompt = "You are a strict but fair examiner for a technical quiz platform. " +
	"Grade the submitted answer against each rubric item on a 0-100 scale. " +
	"Respond with a JSON object only."

const generationSystemPrompt = "You are a question author for a technical quiz platform. " +
	"Produce original, self-contained questions. Respond with a JSON object only."

func buildGradingPrompt(req GradingRequest) string {
	numbered := make([]string, 0, len(req.GradingCriteria))
	for i, criterion := range req.GradingCriteria {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, criterion))
	}

	builder := strings.Builder{}
	builder.WriteString("# Problem\n")
	builder.WriteString(req.ProblemTitle)
	builder.WriteString("\n\n## Question\n")
	builder.WriteString(req.ProblemQuestion)
	builder.WriteString("\n\n## Grading criteria\n")
	builder.WriteString(strings.Join(numbered, "\n"))
	if req.SampleAnswer != "" {
		builder.WriteString("\n\n## Sample answer\n")
		builder.WriteString(req.SampleAnswer)
	}
	builder.WriteString("\n\n## Submitted answer\n")
	builder.WriteString(req.SubmittedAnswer)
	builder.WriteString("\n\nScore every criterion from 0 to 100 and give feedback per criterion plus an overall assessment. ")
	builder.WriteString(`Return JSON: {"feedback": string, "criteriaEvaluation": [{"criteria": string, "score": number, "feedback": string}]}.`)
	return builder.String()
}

func buildMultipleChoicePrompt(category, difficulty string) string {
	return fmt.Sprintf("Write one %s-difficulty multiple-choice question about %s with exactly four options, "+
		"at least one of them correct. "+
		`Return JSON: {"title": string, "question": string, "options": [{"content": string, "isCorrect": boolean}]}.`,
		difficulty, category)
}

func buildSubjectivePrompt(category, difficulty string) string {
	return fmt.Sprintf("Write one %s-difficulty open-ended question about %s. "+
		"Include three to five grading criteria, a sample answer and the expected answer length. "+
		`Return JSON: {"title": string, "question": string, "expectedLength": string, "sampleAnswer": string, "evaluationPoints": [string]}.`,
		difficulty, category)
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON despite the response-format instruction.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
