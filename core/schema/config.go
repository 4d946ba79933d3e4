package schema

// Config holds configuration for the schema registry.
type Config struct {
	// Path is the filesystem path of the JSON schema document.
	Path string `mapstructure:"path" default:"schema.json"`
}
