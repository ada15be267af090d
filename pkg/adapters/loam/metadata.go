package loam

// LibraryMetadata is the front matter of a library step document.
// It uses "mapstructure" tags to match the Frontmatter/YAML keys.
type LibraryMetadata struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Title string `json:"title" yaml:"title" mapstructure:"title"`
	// Language of the code block; informative only.
	Language string `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
}
