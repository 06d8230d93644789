package config

import (
	"fmt"
	"os"

	"github.com/nholik/deploy-hook/internal/environment"
	"github.com/nholik/deploy-hook/internal/transition"
	"gopkg.in/yaml.v3"
)

// Overrides are extension points applied once, before the pipeline becomes ready.
// A nil field means no override is registered. Each registered override replaces
// the corresponding default wholesale.
type Overrides struct {
	Webhooks     func(environment.WebhookMap) environment.WebhookMap
	ContentTypes func([]string) []string
	Transitions  func([]transition.Kind) []transition.Kind
	// TargetURL preempts per-environment lookup when it returns a non-empty URL.
	TargetURL func() string
}

// HasWebhookOverride reports whether the webhook map can be replaced.
func (o Overrides) HasWebhookOverride() bool {
	return o.Webhooks != nil
}

// HasTargetOverride reports whether environment selection can be bypassed.
func (o Overrides) HasTargetOverride() bool {
	return o.TargetURL != nil
}

// Merge layers other on top of o; fields set in other win.
func (o Overrides) Merge(other Overrides) Overrides {
	merged := o
	if other.Webhooks != nil {
		merged.Webhooks = other.Webhooks
	}
	if other.ContentTypes != nil {
		merged.ContentTypes = other.ContentTypes
	}
	if other.Transitions != nil {
		merged.Transitions = other.Transitions
	}
	if other.TargetURL != nil {
		merged.TargetURL = other.TargetURL
	}
	return merged
}

// OverridesFile is the YAML structure for file-based overrides:
//
//	webhooks: {production: https://...}
//	content_types: [post, page]
//	transitions: [draft_to_publish]
//	target_url: https://...
type OverridesFile struct {
	Webhooks     map[string]string `yaml:"webhooks"`
	ContentTypes []string          `yaml:"content_types"`
	Transitions  []string          `yaml:"transitions"`
	TargetURL    *string           `yaml:"target_url"`
}

// LoadOverridesFile parses a YAML overrides file from the given path.
// Returns empty Overrides if path is empty.
func LoadOverridesFile(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read overrides file: %w", err)
	}

	return ParseOverrides(data)
}

// ParseOverrides builds Overrides from YAML. Absent keys register nothing;
// present but empty lists register an empty replacement.
func ParseOverrides(data []byte) (Overrides, error) {
	var file OverridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Overrides{}, fmt.Errorf("parse overrides file: %w", err)
	}

	var overrides Overrides

	if file.Webhooks != nil {
		hooks := make(environment.WebhookMap, len(file.Webhooks))
		for name, hook := range file.Webhooks {
			env := environment.Resolve(name)
			if env == environment.Unresolved {
				return Overrides{}, fmt.Errorf("webhooks: unknown environment %q", name)
			}
			if hook != "" {
				if err := validateURL(hook, "webhooks."+name); err != nil {
					return Overrides{}, err
				}
			}
			hooks[env] = hook
		}
		overrides.Webhooks = func(environment.WebhookMap) environment.WebhookMap {
			return hooks.Clone()
		}
	}

	if file.ContentTypes != nil {
		contentTypes := append([]string{}, file.ContentTypes...)
		overrides.ContentTypes = func([]string) []string {
			return append([]string{}, contentTypes...)
		}
	}

	if file.Transitions != nil {
		kinds := make([]transition.Kind, 0, len(file.Transitions))
		for _, kind := range file.Transitions {
			kinds = append(kinds, transition.Kind(kind))
		}
		overrides.Transitions = func([]transition.Kind) []transition.Kind {
			return append([]transition.Kind{}, kinds...)
		}
	}

	if file.TargetURL != nil {
		target := *file.TargetURL
		if target != "" {
			if err := validateURL(target, "target_url"); err != nil {
				return Overrides{}, err
			}
		}
		overrides.TargetURL = func() string {
			return target
		}
	}

	return overrides, nil
}
