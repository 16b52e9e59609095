package prompt

import (
	"fmt"
	"strings"
)

// GroundedBuilder renders the system instruction that pins answers to the
// retrieved documents.
type GroundedBuilder struct {
	answerLanguage string
}

func NewGroundedBuilder(answerLanguage string) *GroundedBuilder {
	return &GroundedBuilder{answerLanguage: answerLanguage}
}

// Build creates the instruction sent with every query.
func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeRole(&prompt)
	b.writeRules(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeRole(prompt *strings.Builder) {
	prompt.WriteString("You are a document-grounded question answering assistant.\n")
	prompt.WriteString("Rules:\n")
}

func (b *GroundedBuilder) writeRules(prompt *strings.Builder) {
	prompt.WriteString("1. Answer strictly from the content of the retrieved documents.\n")
	prompt.WriteString("2. If the documents do not cover the question, say that the documents do not contain it. Never answer from outside knowledge.\n")
	prompt.WriteString("3. End every answer with its source, in the form: (Source: filename.pdf)\n")
	fmt.Fprintf(prompt, "4. Answer in %s.\n", b.answerLanguage)
}
