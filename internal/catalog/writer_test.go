package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleBlock() *Block {
	return &Block{
		Name:    "Meta Llama 3 8B Instruct Turbo",
		Version: "1.0.0",
		Schema:  SchemaV1,
		Models: []BlockModel{{
			Name:                     "Meta Llama 3 8B Instruct Turbo",
			Provider:                 ProviderTogether,
			Model:                    "meta/llama3-8b",
			APIKey:                   APIKeyInput,
			DefaultCompletionOptions: &CompletionOptions{ContextLength: 8192},
			Roles:                    []string{"apply", "autocomplete", "chat", "edit"},
		}},
	}
}

func TestWriteBlockFrontmatterAndOrder(t *testing.T) {
	s := NewStore(t.TempDir())

	path, err := s.Write("meta-llama-3-8b-instruct-turbo.yaml", sampleBlock())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Errorf("block should start with frontmatter marker, got %q", content[:10])
	}

	order := []string{"name:", "version:", "schema:", "models:", "provider:", "model:", "apiKey:", "defaultCompletionOptions:", "contextLength: 8192", "roles:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(content, key)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", key, content)
		}
		if idx <= last {
			t.Errorf("%q out of order in:\n%s", key, content)
		}
		last = idx
	}

	if !strings.Contains(content, "\n  - name: Meta Llama 3 8B Instruct Turbo\n") {
		t.Errorf("models should use two-space indentation:\n%s", content)
	}
	if !strings.Contains(content, "\n      - apply\n") {
		t.Errorf("roles should be nested under the model entry:\n%s", content)
	}
}

func TestWriteOmitsEmptyContextBlock(t *testing.T) {
	s := NewStore(t.TempDir())
	b := sampleBlock()
	b.Models[0].DefaultCompletionOptions = nil

	path, err := s.Write("x.yaml", b)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "defaultCompletionOptions") {
		t.Errorf("context block should be omitted:\n%s", data)
	}
}

func TestReadBlockRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Write("m.yaml", sampleBlock()); err != nil {
		t.Fatal(err)
	}

	b, err := s.Read("m.yaml")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	pm := b.Primary()
	if pm == nil {
		t.Fatal("expected a model entry")
	}
	if ctx, ok := pm.ContextLength(); !ok || ctx != 8192 {
		t.Errorf("ContextLength = %d, %v; want 8192, true", ctx, ok)
	}
	if pm.APIKey != APIKeyInput {
		t.Errorf("apiKey = %q, want %q", pm.APIKey, APIKeyInput)
	}
	if len(pm.Roles) != 4 || pm.Roles[0] != "apply" {
		t.Errorf("roles = %v", pm.Roles)
	}
}

func TestReadBlockWithoutMarker(t *testing.T) {
	dir := t.TempDir()
	content := "name: Plain\nversion: 1.0.0\nschema: v1\nmodels:\n  - name: Plain\n    roles:\n      - chat\n"
	if err := os.WriteFile(filepath.Join(dir, "plain.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := NewStore(dir).Read("plain.yaml")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if b.Name != "Plain" || b.Primary().Roles[0] != "chat" {
		t.Errorf("unexpected block: %+v", b)
	}
}

func TestReadBlockErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if _, err := s.Read("missing.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("---\nname: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("bad.yaml"); err == nil {
		t.Error("expected error for malformed YAML")
	}

	if err := os.WriteFile(filepath.Join(dir, "empty.yaml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("empty.yaml"); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestLoadCollectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Write("good.yaml", sampleBlock()); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [unclosed\n"), 0o644)
	os.WriteFile(filepath.Join(dir, ManifestFile), []byte("blocks: []\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "together_api_response.json"), []byte("[]"), 0o644)

	cat, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Blocks) != 1 {
		t.Errorf("expected 1 block, got %d", len(cat.Blocks))
	}
	if _, ok := cat.Invalid["bad.yaml"]; !ok {
		t.Error("bad.yaml should be reported as invalid")
	}
}

func TestBuildManifest(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.Write("b.yaml", sampleBlock())

	embed := sampleBlock()
	embed.Name = "Embedder"
	embed.Models[0].Roles = []string{"embed"}
	s.Write("a.yaml", embed)

	cat, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := BuildManifest(cat, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	if m.GeneratedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("generated_at = %q", m.GeneratedAt)
	}
	if m.Stats.TotalBlocks != 2 {
		t.Errorf("total_blocks = %d, want 2", m.Stats.TotalBlocks)
	}
	if m.Blocks[0].File != "a.yaml" {
		t.Errorf("blocks should be sorted by file, got %s first", m.Blocks[0].File)
	}
	if m.Stats.ByRole["chat"] != 1 || m.Stats.ByRole["embed"] != 1 {
		t.Errorf("by_role = %v", m.Stats.ByRole)
	}
}

func TestGenerateManifestWritesIndex(t *testing.T) {
	dir := t.TempDir()
	NewStore(dir).Write("m.yaml", sampleBlock())

	if err := GenerateManifest(dir); err != nil {
		t.Fatalf("GenerateManifest failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Block Manifest") {
		t.Error("manifest should carry the generated header")
	}
	if !strings.Contains(string(data), "file: m.yaml") {
		t.Errorf("manifest should list m.yaml:\n%s", data)
	}
}

func TestManifestDoesNotShadowIndexBlock(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	index := sampleBlock()
	index.Name = "Index"
	if _, err := s.Write("index.yaml", index); err != nil {
		t.Fatal(err)
	}

	if err := GenerateManifest(dir); err != nil {
		t.Fatal(err)
	}

	b, err := s.Read("index.yaml")
	if err != nil {
		t.Fatalf("index.yaml no longer a block: %v", err)
	}
	if b.Name != "Index" {
		t.Errorf("name = %q, want Index", b.Name)
	}
	cat, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Blocks) != 1 || len(cat.Invalid) != 0 {
		t.Errorf("blocks = %v, invalid = %v", cat.Filenames(), cat.Invalid)
	}
}
