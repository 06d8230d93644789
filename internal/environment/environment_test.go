package environment

import "testing"

func TestResolve_CaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  Environment
	}{
		{"development", Development},
		{"DEVELOPMENT", Development},
		{"Development", Development},
		{"staging", Staging},
		{"STAGING", Staging},
		{"StAgInG", Staging},
		{"production", Production},
		{"PRODUCTION", Production},
		{"  Production\n", Production},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Resolve(tt.input); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_UnknownIsUnresolved(t *testing.T) {
	for _, input := range []string{"", "   ", "prod", "qa", "local", "production-eu"} {
		t.Run(input, func(t *testing.T) {
			if got := Resolve(input); got != Unresolved {
				t.Errorf("Resolve(%q) = %q, want unresolved", input, got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Production.Key(); got != "WEBHOOK_PRODUCTION" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Development.Key(); got != "WEBHOOK_DEVELOPMENT" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Unresolved.Key(); got != "WEBHOOK_" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestBuildWebhookMap_KeepsMissingAsEmpty(t *testing.T) {
	values := map[string]string{
		"WEBHOOK_PRODUCTION": " https://example.netlify.app/hook123 ",
	}
	hooks := BuildWebhookMap(func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	})

	if len(hooks) != len(Known) {
		t.Fatalf("expected %d entries, got %d", len(Known), len(hooks))
	}
	if !hooks.Has(Development) {
		t.Fatalf("expected development entry to be present")
	}
	if hooks[Development] != "" {
		t.Fatalf("expected empty development hook, got %q", hooks[Development])
	}
	key, url := hooks.Lookup(Production)
	if key != "WEBHOOK_PRODUCTION" || url != "https://example.netlify.app/hook123" {
		t.Fatalf("unexpected lookup result %q %q", key, url)
	}
	if hooks.Has(Unresolved) {
		t.Fatalf("unresolved must not be part of the map")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	hooks := WebhookMap{Production: "https://a.example"}
	clone := hooks.Clone()
	clone[Production] = "https://b.example"
	if hooks[Production] != "https://a.example" {
		t.Fatalf("clone mutated original map")
	}
}
