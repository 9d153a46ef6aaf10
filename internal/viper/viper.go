// Package viper provides convenience functions over the official spf13/viper library.
// In particular, it satisfies the need of providing a custom pre-configured global viper instance.
package viper

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all environment variables taskboard reads.
const EnvPrefix = "TASKBOARD"

// Default is the default, pre-configured instance of viper.
var Default = New()

// New returns a fresh viper instance with taskboard's key delimiter and environment prefix.
// Simple keys like "version" are looked up as TASKBOARD_VERSION. Keys whose environment name
// cannot be derived from the key itself need an explicit BindEnv.
func New() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	Viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) error { return Default.BindPFlag(key, flag) }

// GetString returns the value associated with the key as a string.
func GetString(key string) string { return Default.GetString(key) }
