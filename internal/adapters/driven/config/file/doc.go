// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the askdocs config directory (~/.askdocs).
//
// Adapters:
//   - ConfigStore: TOML configuration with ASKDOCS_ environment overrides
//   - PromptStore: user-editable condense and answer templates
package file
