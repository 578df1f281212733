package llm

import (
	"strings"
	"testing"
)

func TestBuildAnswerPrompt(t *testing.T) {
	prompt := BuildAnswerPrompt("what changed?", "--- RECORD 1 ---\nTitle: Fix", nil)

	if !strings.Contains(prompt, "what changed?") {
		t.Fatal("prompt missing the query")
	}
	if !strings.Contains(prompt, "--- RECORD 1 ---") {
		t.Fatal("prompt missing the context")
	}
	if strings.Contains(prompt, "{{.") {
		t.Fatalf("unexpanded placeholder in prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "Conversation so far") {
		t.Fatal("empty history must not render a transcript section")
	}
}

func TestBuildAnswerPromptWithHistory(t *testing.T) {
	history := []Turn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	prompt := BuildAnswerPrompt("follow up", "ctx", history)

	if !strings.Contains(prompt, "Conversation so far:") {
		t.Fatal("history section missing")
	}
	if !strings.Contains(prompt, "USER: earlier question") {
		t.Fatalf("history turn missing:\n%s", prompt)
	}
	if strings.Index(prompt, "earlier question") > strings.Index(prompt, "follow up") {
		t.Fatal("history must precede the current query")
	}
}
