// Package configs provides embedded configuration templates for SuperTUI.
//
// Templates are embedded at build time using Go's //go:embed directive, so
// they are available in all distributions (source builds and binary
// releases alike).
//
// The templates are used by:
//   - cmd/supertui/cmd/config.go → creates user config at ~/.config/supertui/config.yaml
//   - cmd/supertui/cmd/init.go → shown as reference when generating .supertui.yaml
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/supertui/config.yaml)
//  3. Project config (.supertui.yaml)
//  4. Environment variables (SUPERTUI_*)
//
// To modify templates, edit the .yaml files in this directory and rebuild.
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by `supertui config init` at ~/.config/supertui/config.yaml.
// Contains machine-specific settings: workspace storage paths, toast
// timing, UI rendering, log level.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration.
// `supertui init` generates .supertui.yaml with detected values; this
// fully commented template documents every option.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
