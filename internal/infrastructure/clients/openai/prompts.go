package openai

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = `You are an assistant for a local event discovery service. ` +
	`Answer the user's question using only the event listings provided in the prompt. ` +
	`Mention event titles explicitly when you reference them. ` +
	`If the listings do not contain an answer, say so briefly instead of inventing events. ` +
	`Keep answers under four sentences.`

func buildAnswerUserPrompt(query string, docs []ContextDocument) string {
	var b strings.Builder

	if len(docs) == 0 {
		b.WriteString("No event listings matched.\n\n")
	} else {
		b.WriteString("Event listings:\n")
		for i, doc := range docs {
			fmt.Fprintf(&b, "%d. %s", i+1, doc.Title)
			if doc.Excerpt != "" {
				fmt.Fprintf(&b, " - %s", doc.Excerpt)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s", query)
	return b.String()
}
