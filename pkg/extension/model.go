package extension

// Model is the canonical, loader-produced representation of an extension's
// capabilities. Models are identified by name within an artifact; two models
// with the same name are the same extension.
type Model struct {
	Name             string           `json:"name"`
	Version          string           `json:"version"`
	Vendor           string           `json:"vendor,omitempty"`
	Description      string           `json:"description,omitempty"`
	Types            []TypeDecl       `json:"types,omitempty"`
	Operations       []Operation      `json:"operations,omitempty"`
	ConfigProperties []ConfigProperty `json:"configProperties,omitempty"`
	Imports          []string         `json:"imports,omitempty"`
}

// TypeDecl declares a data type exposed by an extension. Field values may
// reference types from imported extensions using the "extension:type" form.
type TypeDecl struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Operation declares an invocable capability of an extension.
type Operation struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Output      string            `json:"output,omitempty"`
}

// ConfigProperty declares a configuration surface entry of an extension.
type ConfigProperty struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
	Default  string `json:"default,omitempty"`
}
