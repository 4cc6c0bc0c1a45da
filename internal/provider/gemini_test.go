package provider

import "testing"

func TestBuildGeminiRequestCollectsLeadingSystemMessages(t *testing.T) {
	req := buildGeminiRequest([]ChatMessage{
		{Role: "system", Content: "be terse"},
		{Role: "system", Content: "never apologize"},
		{Role: "user", Content: "hi"},
	})
	if req.SystemInstruction == nil {
		t.Fatal("expected a system instruction")
	}
	want := "be terse\nnever apologize"
	if got := req.SystemInstruction.Parts[0].Text; got != want {
		t.Errorf("system instruction = %q, want %q", got, want)
	}
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Errorf("unexpected contents: %+v", req.Contents)
	}
}

func TestBuildGeminiRequestPrefixesMidConversationSystemMessages(t *testing.T) {
	req := buildGeminiRequest([]ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "system", Content: "be careful"},
		{Role: "user", Content: "ok"},
	})
	if req.SystemInstruction != nil {
		t.Errorf("did not expect a leading system instruction, got %+v", req.SystemInstruction)
	}
	if len(req.Contents) != 3 {
		t.Fatalf("expected 3 contents, got %d: %+v", len(req.Contents), req.Contents)
	}
	if req.Contents[2].Role != "user" || req.Contents[2].Parts[0].Text != "[SYSTEM] be careful\nok" {
		t.Errorf("unexpected merged turn: %+v", req.Contents[2])
	}
}

func TestBuildGeminiRequestMergesConsecutiveSameRoleTurns(t *testing.T) {
	req := buildGeminiRequest([]ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "user", Content: "second"},
		{Role: "assistant", Content: "reply"},
	})
	if len(req.Contents) != 2 {
		t.Fatalf("expected 2 merged contents, got %d: %+v", len(req.Contents), req.Contents)
	}
	if req.Contents[0].Parts[0].Text != "first\nsecond" {
		t.Errorf("expected merged user turn, got %q", req.Contents[0].Parts[0].Text)
	}
	if req.Contents[1].Role != "model" {
		t.Errorf("expected assistant -> model role, got %s", req.Contents[1].Role)
	}
}

func TestBuildGeminiRequestMergesSystemInjectionIntoPrecedingUserTurn(t *testing.T) {
	req := buildGeminiRequest([]ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "system", Content: "be careful"},
	})
	if len(req.Contents) != 1 {
		t.Fatalf("expected system injection to merge into the preceding user turn, got %+v", req.Contents)
	}
	if req.Contents[0].Parts[0].Text != "hi\n[SYSTEM] be careful" {
		t.Errorf("unexpected merged text: %q", req.Contents[0].Parts[0].Text)
	}
}
