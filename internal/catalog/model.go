package catalog

// Fixed values every generated block carries.
const (
	SchemaV1         = "v1"
	ProviderTogether = "together"
	APIKeyInput      = "${{ inputs.TOGETHER_API_KEY }}"
)

// Block is one generated configuration file. Field order is the order
// written to disk and must not change.
type Block struct {
	Name    string       `yaml:"name" validate:"required"`
	Version string       `yaml:"version" validate:"required"`
	Schema  string       `yaml:"schema" validate:"required,eq=v1"`
	Models  []BlockModel `yaml:"models" validate:"required,min=1,dive"`
}

// BlockModel is the model entry embedded in a block. Roles stay last.
type BlockModel struct {
	Name                     string             `yaml:"name" validate:"required"`
	Provider                 string             `yaml:"provider" validate:"required,eq=together"`
	Model                    string             `yaml:"model" validate:"required"`
	APIKey                   string             `yaml:"apiKey" validate:"required"`
	DefaultCompletionOptions *CompletionOptions `yaml:"defaultCompletionOptions,omitempty"`
	Roles                    []string           `yaml:"roles" validate:"required,min=1"`
}

// CompletionOptions holds the model's default request options.
type CompletionOptions struct {
	ContextLength int `yaml:"contextLength" validate:"gt=0"`
}

// ContextLength returns the context window, if the block declares one.
func (m *BlockModel) ContextLength() (int, bool) {
	if m.DefaultCompletionOptions == nil || m.DefaultCompletionOptions.ContextLength <= 0 {
		return 0, false
	}
	return m.DefaultCompletionOptions.ContextLength, true
}

// Primary returns the first model entry, or nil for an empty block.
func (b *Block) Primary() *BlockModel {
	if len(b.Models) == 0 {
		return nil
	}
	return &b.Models[0]
}
