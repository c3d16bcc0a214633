package models

import (
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
)

// Action is the outcome a rule selects when it applies
type Action string

const (
	ActionAllow    Action = "allow"
	ActionDisallow Action = "disallow"
)

// OSRule qualifies a rule by operating system
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Rule gates a library or argument on the running platform
type Rule struct {
	Action   Action          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// Platform is the environment rules are evaluated against
type Platform struct {
	OS       string
	Arch     string
	Features map[string]bool
}

// CurrentPlatform returns the platform the process runs on, named the way manifests name it
func CurrentPlatform() Platform {
	return Platform{OS: osName(runtime.GOOS), Arch: archName(runtime.GOARCH)}
}

func osName(goos string) string {
	switch goos {
	case "darwin":
		return "osx"
	default:
		return goos
	}
}

func archName(goarch string) string {
	switch goarch {
	case "386":
		return "x86"
	case "amd64":
		return "x86_64"
	default:
		return goarch
	}
}

// Bits returns the pointer width used in ${arch} classifier templates
func (p Platform) Bits() string {
	switch p.Arch {
	case "x86", "arm":
		return "32"
	default:
		return "64"
	}
}

// Applies reports whether the rule's qualifiers match p
func (r Rule) Applies(p Platform) bool {
	if r.OS != nil {
		if r.OS.Name != "" && r.OS.Name != p.OS {
			return false
		}
		if r.OS.Arch != "" && r.OS.Arch != p.Arch {
			return false
		}
	}
	for feature, want := range r.Features {
		if p.Features[feature] != want {
			return false
		}
	}
	return true
}

// RulesAllow evaluates a rule list. An empty list allows; otherwise the
// last rule that applies decides, starting from disallowed.
func RulesAllow(rules []Rule, p Platform) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := false
	for _, rule := range rules {
		if rule.Applies(p) {
			allowed = rule.Action == ActionAllow
		}
	}
	return allowed
}

// Extract lists archive paths to skip when unpacking natives
type Extract struct {
	Exclude []string `json:"exclude"`
}

// LibraryDownloads holds the main artifact and any native classifiers
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Library is a dependency declared by a version manifest
type Library struct {
	Name      string            `json:"name"`
	Downloads LibraryDownloads  `json:"downloads"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   *Extract          `json:"extract,omitempty"`
}

// Allowed reports whether the library applies on p
func (l Library) Allowed(p Platform) bool {
	return RulesAllow(l.Rules, p)
}

// ResolvedArtifact is a library file selected for the running platform
type ResolvedArtifact struct {
	Artifact
	Library string
	Native  bool
	Exclude []string
}

var classifierFallbacks = map[string][]string{
	"linux":   {"natives-linux", "linux-x86_64"},
	"osx":     {"natives-osx", "natives-macos"},
	"windows": {"natives-windows", "natives-windows-64", "natives-windows-32"},
}

// Artifacts resolves the files this library contributes on p. Natives that do
// not cover p contribute nothing; a library with no artifact and no natives is malformed.
func (l Library) Artifacts(p Platform) ([]ResolvedArtifact, error) {
	var out []ResolvedArtifact

	if a := l.Downloads.Artifact; a != nil {
		resolved := *a
		if resolved.Path == "" {
			resolved.Path = MavenPath(l.Name, "")
		}
		out = append(out, ResolvedArtifact{Artifact: resolved, Library: l.Name})
	}

	if len(l.Natives) > 0 {
		if native, ok := l.nativeArtifact(p); ok {
			out = append(out, native)
		}
		return out, nil
	}

	if len(out) == 0 {
		return nil, errs.Newf(errs.KindDecode, "resolve library", "library %s has no artifact for %s", l.Name, p.OS)
	}
	return out, nil
}

func (l Library) nativeArtifact(p Platform) (ResolvedArtifact, bool) {
	key, ok := l.Natives[p.OS]
	if !ok {
		return ResolvedArtifact{}, false
	}
	key = strings.ReplaceAll(key, "${arch}", p.Bits())

	candidates := append([]string{key}, classifierFallbacks[p.OS]...)
	for _, candidate := range candidates {
		artifact, ok := l.Downloads.Classifiers[candidate]
		if !ok {
			continue
		}
		if artifact.Path == "" {
			artifact.Path = MavenPath(l.Name, candidate)
		}
		native := ResolvedArtifact{Artifact: artifact, Library: l.Name, Native: true}
		if l.Extract != nil {
			native.Exclude = l.Extract.Exclude
		}
		return native, true
	}
	return ResolvedArtifact{}, false
}

// MavenPath converts a group:artifact:version coordinate into its repository path
func MavenPath(name, classifier string) string {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return name
	}
	group, artifact, version := parts[0], parts[1], parts[2]
	if classifier == "" && len(parts) > 3 {
		classifier = parts[3]
	}

	file := fmt.Sprintf("%s-%s", artifact, version)
	if classifier != "" {
		file += "-" + classifier
	}
	return path.Join(strings.ReplaceAll(group, ".", "/"), artifact, version, file+".jar")
}
