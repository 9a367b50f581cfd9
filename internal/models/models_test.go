package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSystem, true},
		{RoleUser, true},
		{RoleAssistant, true},
		{RoleFunction, true},
		{Role("tool"), false},
		{Role(""), false},
		{Role("User"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestMessage_JSONOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hello"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	if got != `{"role":"user","content":"hello"}` {
		t.Errorf("Marshal = %s", got)
	}
}

func TestMessage_JSONFunctionCall(t *testing.T) {
	msg := Message{
		Role:         RoleAssistant,
		FunctionCall: &FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"function_call":{"name":"lookup"`) {
		t.Errorf("function_call not serialized: %s", data)
	}
}

func TestMessage_NullContent(t *testing.T) {
	var msg Message
	if err := json.Unmarshal([]byte(`{"role":"assistant","content":null,"function_call":{"name":"f","arguments":"{}"}}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Content != "" {
		t.Errorf("Content = %q, want empty", msg.Content)
	}
	if msg.FunctionCall == nil || msg.FunctionCall.Name != "f" {
		t.Errorf("FunctionCall = %+v", msg.FunctionCall)
	}
}

func TestCompletionText(t *testing.T) {
	var nilCompletion *Completion
	if nilCompletion.Text() != "" {
		t.Error("nil completion should have empty text")
	}

	c := &Completion{Message: NewAssistantMessage("hi")}
	if c.Text() != "hi" {
		t.Errorf("Text() = %q, want hi", c.Text())
	}
}

func TestAllProviders(t *testing.T) {
	providers := AllProviders()
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if providers[0] != ProviderHTTP {
		t.Errorf("first provider = %s, want %s", providers[0], ProviderHTTP)
	}
}
