package assemble

import (
	"slices"
	"testing"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/roles"
	"github.com/everstacklabs/blocksmith/internal/validate"
)

func TestBuildChatBlock(t *testing.T) {
	rec := adapter.Record{
		ID:            "meta/llama3-8b",
		DisplayName:   "Meta Llama 3 8B Instruct Turbo",
		Type:          adapter.TypeChat,
		ContextLength: 8192,
	}
	allow := roles.NewAllowlist([]string{"Meta Llama 3 8B Instruct Turbo"})

	b := Build(rec, roles.Classify(rec, allow), "1.0.0")

	if b.Name != "Meta Llama 3 8B Instruct Turbo" || b.Version != "1.0.0" || b.Schema != catalog.SchemaV1 {
		t.Errorf("block header = %q %q %q", b.Name, b.Version, b.Schema)
	}
	if len(b.Models) != 1 {
		t.Fatalf("models = %d, want 1", len(b.Models))
	}

	m := b.Models[0]
	if m.Name != rec.DisplayName || m.Provider != catalog.ProviderTogether || m.Model != rec.ID || m.APIKey != catalog.APIKeyInput {
		t.Errorf("model = %+v", m)
	}
	if m.DefaultCompletionOptions == nil || m.DefaultCompletionOptions.ContextLength != 8192 {
		t.Errorf("defaultCompletionOptions = %+v, want contextLength 8192", m.DefaultCompletionOptions)
	}
	if want := []string{"apply", "autocomplete", "chat", "edit"}; !slices.Equal(m.Roles, want) {
		t.Errorf("roles = %v, want %v", m.Roles, want)
	}

	if res := validate.ValidateBlock(b, "meta-llama-3-8b-instruct-turbo.yaml"); res.HasErrors() {
		t.Errorf("built block should validate: %s", validate.FormatResult(res))
	}
}

func TestBuildWithoutContextLength(t *testing.T) {
	rec := adapter.Record{ID: "org/chat", DisplayName: "Chat", Type: adapter.TypeChat}
	b := Build(rec, roles.Classify(rec, roles.Allowlist{}), "1.0.0")

	if b.Models[0].DefaultCompletionOptions != nil {
		t.Errorf("defaultCompletionOptions = %+v, want omitted", b.Models[0].DefaultCompletionOptions)
	}
	if want := []string{"chat", "edit"}; !slices.Equal(b.Models[0].Roles, want) {
		t.Errorf("roles = %v, want %v", b.Models[0].Roles, want)
	}
}

func TestBuildUnknownTypeFailsValidation(t *testing.T) {
	rec := adapter.Record{ID: "org/thing", DisplayName: "Thing", Type: adapter.TypeUnknown, ContextLength: 4096}
	b := Build(rec, roles.Classify(rec, roles.Allowlist{}), "1.0.0")

	if len(b.Models[0].Roles) != 0 {
		t.Errorf("roles = %v, want none", b.Models[0].Roles)
	}
	if !validate.ValidateBlock(b, "thing.yaml").HasErrors() {
		t.Error("a block without roles should fail validation")
	}
}
