package roles

import (
	"slices"
	"sort"
	"testing"

	"github.com/everstacklabs/blocksmith/internal/adapter"
)

var allTypes = []adapter.ModelType{
	adapter.TypeChat, adapter.TypeLanguage, adapter.TypeEmbedding,
	adapter.TypeRerank, adapter.TypeImage, adapter.TypeAudio,
	adapter.TypeModeration, adapter.TypeMultimodal, adapter.TypeUnknown,
}

func TestClassifyBaseRoles(t *testing.T) {
	tests := []struct {
		typ  adapter.ModelType
		ctx  int
		want Set
	}{
		{adapter.TypeChat, 4096, Set{RoleChat, RoleEdit}},
		{adapter.TypeLanguage, 0, Set{RoleChat, RoleEdit}},
		{adapter.TypeChat, 8192, Set{RoleApply, RoleChat, RoleEdit}},
		{adapter.TypeLanguage, 131072, Set{RoleApply, RoleChat, RoleEdit}},
		{adapter.TypeEmbedding, 8192, Set{RoleEmbed}},
		{adapter.TypeRerank, 8192, Set{RoleRerank}},
		{adapter.TypeImage, 0, Set{RoleImage}},
		{adapter.TypeAudio, 0, Set{RoleAudio}},
		{adapter.TypeModeration, 8192, Set{RoleModeration}},
		{adapter.TypeMultimodal, 8192, Set{}},
		{adapter.TypeUnknown, 8192, Set{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			rec := adapter.Record{ID: "org/model", DisplayName: "Model", Type: tt.typ, ContextLength: tt.ctx}
			if got := Classify(rec, NewAllowlist(nil)); !slices.Equal(got, tt.want) {
				t.Errorf("Classify(%s, %d) = %v, want %v", tt.typ, tt.ctx, got, tt.want)
			}
		})
	}
}

func TestClassifyNeverAppliesBelowThreshold(t *testing.T) {
	allow := NewAllowlist([]string{"Small", "org/small"})
	for _, typ := range allTypes {
		for _, ctx := range []int{0, 1, 2048, 4096, 8191} {
			rec := adapter.Record{ID: "org/small", DisplayName: "Small", Type: typ, ContextLength: ctx}
			if Classify(rec, allow).Has(RoleApply) {
				t.Errorf("type=%s ctx=%d got apply", typ, ctx)
			}
		}
	}
}

func TestClassifyAllowlistOverridesType(t *testing.T) {
	allow := NewAllowlist([]string{"Listed", "org/listed"})
	for _, typ := range allTypes {
		byName := adapter.Record{ID: "org/x", DisplayName: "Listed", Type: typ}
		byID := adapter.Record{ID: "org/listed", DisplayName: "Other", Type: typ}

		if !Classify(byName, allow).Has(RoleAutocomplete) {
			t.Errorf("by name, type=%s: missing autocomplete", typ)
		}
		if !Classify(byID, allow).Has(RoleAutocomplete) {
			t.Errorf("by id, type=%s: missing autocomplete", typ)
		}
	}

	rec := adapter.Record{ID: "org/img", DisplayName: "Picture", Type: adapter.TypeImage}
	want := Set{RoleAutocomplete, RoleImage}
	if got := Classify(rec, NewAllowlist([]string{"Picture"})); !slices.Equal(got, want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

func TestClassifyNotAllowlisted(t *testing.T) {
	rec := adapter.Record{ID: "org/big", DisplayName: "Big Model", Type: adapter.TypeChat, ContextLength: 32768}
	got := Classify(rec, NewAllowlist([]string{"big model", "org/BIG"}))
	if got.Has(RoleAutocomplete) {
		t.Error("allowlist matching must be exact")
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	allow := NewAllowlist([]string{"Meta Llama 3 8B Instruct Turbo"})
	rec := adapter.Record{ID: "meta/llama3-8b", DisplayName: "Meta Llama 3 8B Instruct Turbo", Type: adapter.TypeChat, ContextLength: 8192}

	first := Classify(rec, allow)
	for i := 0; i < 10; i++ {
		if got := Classify(rec, allow); !slices.Equal(got, first) {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
	if !sort.StringsAreSorted(first.Strings()) {
		t.Errorf("roles not sorted: %v", first.Strings())
	}
}

func TestClassifyEndToEndExample(t *testing.T) {
	allow := NewAllowlist([]string{"Meta Llama 3 8B Instruct Turbo"})
	rec := adapter.Record{ID: "meta/llama3-8b", DisplayName: "Meta Llama 3 8B Instruct Turbo", Type: adapter.TypeChat, ContextLength: 8192}

	want := []string{"apply", "autocomplete", "chat", "edit"}
	if got := Classify(rec, allow).Strings(); !slices.Equal(got, want) {
		t.Errorf("roles = %v, want %v", got, want)
	}
}

func TestNewSetDeduplicatesAndSorts(t *testing.T) {
	s := NewSet(RoleEdit, RoleChat, RoleEdit, RoleApply, RoleChat)
	if want := (Set{RoleApply, RoleChat, RoleEdit}); !slices.Equal(s, want) {
		t.Errorf("NewSet = %v, want %v", s, want)
	}
	if !s.Has(RoleChat) || s.Has(RoleEmbed) {
		t.Errorf("Has is wrong for %v", s)
	}
}

func TestSetDiff(t *testing.T) {
	s := NewSet(RoleApply, RoleChat, RoleEdit)

	added, removed := s.Diff([]string{"chat", "edit", "autocomplete"})
	if !slices.Equal(added, []string{"apply"}) || !slices.Equal(removed, []string{"autocomplete"}) {
		t.Errorf("Diff = +%v -%v, want +[apply] -[autocomplete]", added, removed)
	}

	added, removed = s.Diff([]string{"edit", "chat", "apply"})
	if len(added) != 0 || len(removed) != 0 {
		t.Errorf("same roles in another order: +%v -%v", added, removed)
	}
}

func TestAllowlistEntries(t *testing.T) {
	a := NewAllowlist([]string{"B", "A", "", "B"})
	if got := a.Entries(); !slices.Equal(got, []string{"B", "A"}) {
		t.Errorf("Entries = %v, want [B A]", got)
	}
	if !a.Contains("A") || a.Contains("") {
		t.Error("Contains is wrong")
	}
}

func TestKnown(t *testing.T) {
	if !Known("autocomplete") || Known("summarize") {
		t.Error("Known is wrong")
	}
}
