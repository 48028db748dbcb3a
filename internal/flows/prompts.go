package flows

import "fmt"

func architecturePrompt(requirement string) string {
	return fmt.Sprintf(`You are a software architect. Analyze the following product requirement and propose an architecture.

Requirement:
%s

Respond with a JSON object:
{"summary": "...", "components": ["..."], "stack": ["..."]}`, requirement)
}

func backendPrompt(a analysisOutput) string {
	return fmt.Sprintf(`Generate the backend source files for this architecture.

Architecture summary: %s
Components: %v

Respond with a JSON object: {"files": [{"path": "...", "content": "..."}]}`, a.Arch.Summary, a.Arch.Components)
}

func uiPrompt(a analysisOutput) string {
	return fmt.Sprintf(`Generate the UI source files for this architecture.

Architecture summary: %s
Components: %v

Respond with a JSON object: {"files": [{"path": "...", "content": "..."}]}`, a.Arch.Summary, a.Arch.Components)
}

func integrationPrompt(backendFiles, uiFiles string) string {
	return fmt.Sprintf(`Review the backend and UI below for cross-file consistency: mismatched endpoints, payload shapes, and naming. Reply with concise review notes.

Backend:
%s

UI:
%s`, backendFiles, uiFiles)
}

func writePrompt(topic string) string {
	return fmt.Sprintf("Write a well-structured article about the following topic.\n\nTopic: %s", topic)
}

func reviewPrompt(draft string) string {
	return fmt.Sprintf(`Review the article below for quality. Respond with a JSON object:
{"score": <0-100>, "feedback": "..."}

Article:
%s`, draft)
}

func tagsPrompt(draft string) string {
	return fmt.Sprintf(`Extract topical tags for the article below. Respond with a JSON object:
{"tags": ["..."]}

Article:
%s`, draft)
}

func entitiesPrompt(draft string) string {
	return fmt.Sprintf(`Extract named entities from the article below. Respond with a JSON object:
{"people": ["..."], "places": ["..."], "organizations": ["..."]}

Article:
%s`, draft)
}

func sentimentPrompt(draft string) string {
	return fmt.Sprintf(`Classify the overall sentiment of the article below. Respond with a JSON object:
{"label": "positive|neutral|negative", "score": <-1.0 to 1.0>}

Article:
%s`, draft)
}

func seoPrompt(draft, feedback string) string {
	return fmt.Sprintf(`Rewrite the article below for search-engine visibility while preserving meaning. Apply the reviewer feedback where it helps.

Reviewer feedback: %s

Article:
%s`, feedback, draft)
}
