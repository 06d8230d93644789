package preflight

// State is a step of the startup sequence.
type State int

const (
	Start State = iota
	TextDomainLoaded
	DependenciesChecked
	RuntimeVersionChecked
	PlatformVersionChecked
	EnvironmentChecked
	Ready
	Failed
)

var stateNames = map[State]string{
	Start:                  "start",
	TextDomainLoaded:       "text_domain_loaded",
	DependenciesChecked:    "dependencies_checked",
	RuntimeVersionChecked:  "runtime_version_checked",
	PlatformVersionChecked: "platform_version_checked",
	EnvironmentChecked:     "environment_checked",
	Ready:                  "ready",
	Failed:                 "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
