package artifact

// DescriptorSchema is the JSON Schema for plugin descriptor validation
const DescriptorSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "version"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique plugin name within the owning artifact"
    },
    "version": {
      "type": "string",
      "minLength": 1,
      "description": "Semver version"
    },
    "description": {
      "type": "string",
      "description": "Plugin description"
    },
    "vendor": {
      "type": "string",
      "description": "Plugin vendor"
    },
    "extension": {
      "type": "object",
      "properties": {
        "loader": {
          "type": "object",
          "required": ["id"],
          "properties": {
            "id": {
              "type": "string",
              "minLength": 1,
              "description": "Registered extension loader identifier"
            },
            "attributes": {
              "type": "object",
              "description": "Loader parameters"
            }
          }
        }
      }
    }
  }
}`

// DefinitionSchema is the JSON Schema for artifact definition validation
const DefinitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "version", "plugins"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique artifact name"
    },
    "version": {
      "type": "string",
      "minLength": 1,
      "description": "Semver version"
    },
    "description": {
      "type": "string",
      "description": "Artifact description"
    },
    "minRuntimeVersion": {
      "type": "string",
      "description": "Minimum runtime version the artifact requires"
    },
    "plugins": {
      "type": "array",
      "items": {
        "type": "string",
        "minLength": 1
      },
      "description": "Bundled plugins in resolution order"
    }
  }
}`
