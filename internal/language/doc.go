// Package language normalizes stream language tags so audio tracks can be
// matched against the configured preferred languages.
package language
