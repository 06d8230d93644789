package environment

import "strings"

const webhookKeyPrefix = "WEBHOOK_"

// Environment is a deployment stage.
type Environment string

const (
	Unresolved  Environment = ""
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Known lists every resolvable environment in a stable order.
var Known = []Environment{Development, Staging, Production}

// Resolve maps a raw environment value to a known Environment.
// Unknown or empty values resolve to Unresolved.
func Resolve(raw string) Environment {
	candidate := Environment(strings.ToLower(strings.TrimSpace(raw)))
	for _, env := range Known {
		if env == candidate {
			return env
		}
	}
	return Unresolved
}

// Key returns the configuration key holding the webhook for this environment.
func (e Environment) Key() string {
	return webhookKeyPrefix + strings.ToUpper(string(e))
}

func (e Environment) String() string {
	if e == Unresolved {
		return "unresolved"
	}
	return string(e)
}

// LookupFunc reads a single configuration value.
type LookupFunc func(key string) (string, bool)

// WebhookMap maps each environment to its webhook URL.
type WebhookMap map[Environment]string

// BuildWebhookMap creates one entry per known environment. Missing values are
// kept as empty strings.
func BuildWebhookMap(lookup LookupFunc) WebhookMap {
	hooks := make(WebhookMap, len(Known))
	for _, env := range Known {
		value := ""
		if lookup != nil {
			if found, ok := lookup(env.Key()); ok {
				value = strings.TrimSpace(found)
			}
		}
		hooks[env] = value
	}
	return hooks
}

// Lookup returns the configuration key and URL for env.
func (m WebhookMap) Lookup(env Environment) (string, string) {
	return env.Key(), m[env]
}

// Has reports whether env has an entry, even an empty one.
func (m WebhookMap) Has(env Environment) bool {
	_, ok := m[env]
	return ok
}

// Clone returns a copy that can be handed to override hooks.
func (m WebhookMap) Clone() WebhookMap {
	if m == nil {
		return nil
	}
	clone := make(WebhookMap, len(m))
	for env, url := range m {
		clone[env] = url
	}
	return clone
}
