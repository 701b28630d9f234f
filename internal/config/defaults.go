package config

import (
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// ProfileDefaults is the fallback toggle and companion naming of one profile
type ProfileDefaults struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
	Suffix  string `mapstructure:"suffix"`
}

// Defaults are the values used for annotation arguments left out in source.
// They start from the annotation declaration and may be overridden by the
// project configuration file.
type Defaults struct {
	JBlocking        ProfileDefaults `mapstructure:"jblocking"`
	JAsync           ProfileDefaults `mapstructure:"jasync"`
	JsAsync          ProfileDefaults `mapstructure:"jsasync"`
	MarkJvmSynthetic bool            `mapstructure:"markjvmsynthetic"`
	Strict           bool            `mapstructure:"strict"`
}

// argument stems of the marker annotation, indexed by profile
var profileArgs = [models.ProfileCount]string{
	models.Blocking:         "jBlocking",
	models.ThreadFuture:     "jAsync",
	models.EventLoopPromise: "jsAsync",
}

// SchemaDefaults returns the defaults declared by the SuspendReversal
// annotation class, with strict handling of unsupported signatures.
func SchemaDefaults() Defaults {
	schema := annotations.SuspendReversalSchema
	profile := func(p models.Profile) ProfileDefaults {
		stem := profileArgs[p]
		return ProfileDefaults{
			Enabled: schema.DefaultBool(stem),
			Prefix:  schema.DefaultString(stem + "ClassNamePrefix"),
			Suffix:  schema.DefaultString(stem + "ClassNameSuffix"),
		}
	}
	return Defaults{
		JBlocking:        profile(models.Blocking),
		JAsync:           profile(models.ThreadFuture),
		JsAsync:          profile(models.EventLoopPromise),
		MarkJvmSynthetic: schema.DefaultBool("markJvmSynthetic"),
		Strict:           true,
	}
}

// Profile returns the defaults of p
func (d Defaults) Profile(p models.Profile) ProfileDefaults {
	switch p {
	case models.Blocking:
		return d.JBlocking
	case models.ThreadFuture:
		return d.JAsync
	default:
		return d.JsAsync
	}
}

// Validate checks that every affix is usable in a Kotlin type name and that
// no enabled profile would reuse the original type name.
func (d Defaults) Validate() error {
	affix := func(field string) *utils.ValidatorChain[string] {
		return utils.NewValidatorChain(func(v string) error {
			if v == "" {
				return nil
			}
			return utils.IsKotlinIdentifier(field)(v)
		})
	}
	for _, p := range models.AllProfiles {
		pd := d.Profile(p)
		stem := "defaults." + profileArgs[p]
		if err := affix(stem + ".prefix").Validate(pd.Prefix); err != nil {
			return err
		}
		if err := affix(stem + ".suffix").Validate(pd.Suffix); err != nil {
			return err
		}
		if pd.Enabled && pd.Prefix == "" && pd.Suffix == "" {
			return utils.ValidationError{
				Field:   stem,
				Message: "prefix and suffix cannot both be empty",
			}
		}
	}
	return nil
}
