package models

// Profile is one execution profile a companion type is generated for
type Profile int

const (
	Blocking         Profile = iota // JVM blocking call
	ThreadFuture                    // JVM CompletableFuture
	EventLoopPromise                // JS Promise
)

// ProfileCount is the number of profiles
const ProfileCount = 3

// AllProfiles lists profiles in emission order
var AllProfiles = [ProfileCount]Profile{Blocking, ThreadFuture, EventLoopPromise}

// String returns the profile name
func (p Profile) String() string {
	switch p {
	case Blocking:
		return "Blocking"
	case ThreadFuture:
		return "ThreadFuture"
	case EventLoopPromise:
		return "EventLoopPromise"
	default:
		return "UnknownProfile"
	}
}

// Platform is the compilation target a companion type is written for
type Platform int

const (
	PlatformJVM Platform = iota
	PlatformJS
)

// String returns the platform name
func (p Platform) String() string {
	if p == PlatformJS {
		return "js"
	}
	return "jvm"
}

// NamingRule builds a name as Prefix + (BaseName or the original name) + Suffix
type NamingRule struct {
	Prefix   string
	BaseName string
	Suffix   string
}

// Apply returns the generated name for original
func (n NamingRule) Apply(original string) string {
	base := n.BaseName
	if base == "" {
		base = original
	}
	return n.Prefix + base + n.Suffix
}

// ProfileConfig holds the toggle and type naming of one profile
type ProfileConfig struct {
	Enabled    bool
	TypePrefix string
	TypeSuffix string
}

// TypeNaming returns the naming rule for companion types
func (p ProfileConfig) TypeNaming() NamingRule {
	return NamingRule{Prefix: p.TypePrefix, Suffix: p.TypeSuffix}
}

// GenerationConfig is the resolved configuration for one type
type GenerationConfig struct {
	Profiles            [ProfileCount]ProfileConfig // indexed by Profile
	MarkBridgeSynthetic bool                        // mark bridging overrides @JvmSynthetic
	Strict              bool                        // an unsupported signature aborts the whole type
	Origin              string                      // scope the configuration was found on
}

// Profile returns the configuration of p
func (c GenerationConfig) Profile(p Profile) ProfileConfig {
	return c.Profiles[p]
}
