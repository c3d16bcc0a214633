package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Artifact is a downloadable file with its expected SHA-1
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Downloads lists the jars a version publishes
type Downloads struct {
	Client         Artifact  `json:"client"`
	ClientMappings *Artifact `json:"client_mappings,omitempty"`
	Server         *Artifact `json:"server,omitempty"`
	ServerMappings *Artifact `json:"server_mappings,omitempty"`
}

// JavaVersion is the runtime a version expects
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Manifest is the per-version document describing what to download and how to launch
type Manifest struct {
	ID                     string        `json:"id"`
	Type                   ReleaseType   `json:"type"`
	MainClass              string        `json:"mainClass"`
	Assets                 string        `json:"assets"`
	AssetIndex             AssetIndexRef `json:"assetIndex"`
	Downloads              Downloads     `json:"downloads"`
	Libraries              []Library     `json:"libraries"`
	Arguments              *Arguments    `json:"arguments,omitempty"`
	MinecraftArguments     string        `json:"minecraftArguments,omitempty"`
	JavaVersion            *JavaVersion  `json:"javaVersion,omitempty"`
	MinimumLauncherVersion int           `json:"minimumLauncherVersion,omitempty"`
	ReleaseTime            string        `json:"releaseTime,omitempty"`
	Time                   string        `json:"time,omitempty"`
}

// Arguments holds the modern argument templates
type Arguments struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm"`
}

// Argument is a plain template string or a rule-gated group of templates
type Argument struct {
	Rules  []Rule
	Values []string
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Argument{Values: []string{s}}
		return nil
	}

	var raw struct {
		Rules []Rule          `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	values, err := stringOrSlice(raw.Value)
	if err != nil {
		return fmt.Errorf("argument value: %w", err)
	}

	*a = Argument{Rules: raw.Rules, Values: values}
	return nil
}

func stringOrSlice(data json.RawMessage) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var values []string
		err := json.Unmarshal(data, &values)
		return values, err
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// DefaultJVMArguments are used for manifests that only carry minecraftArguments
var DefaultJVMArguments = []string{
	"-Djava.library.path=${natives_directory}",
	"-Djna.tmpdir=${natives_directory}",
	"-Dorg.lwjgl.system.SharedLibraryExtractPath=${natives_directory}",
	"-Dio.netty.native.workdir=${natives_directory}",
	"-Dminecraft.launcher.brand=${launcher_name}",
	"-Dminecraft.launcher.version=${launcher_version}",
	"-cp",
	"${classpath}",
}

// JVMTemplates returns the JVM argument templates that apply on p
func (m *Manifest) JVMTemplates(p Platform) []string {
	if m.Arguments == nil || len(m.Arguments.JVM) == 0 {
		return DefaultJVMArguments
	}
	return filterArguments(m.Arguments.JVM, p)
}

// GameTemplates returns the game argument templates that apply on p
func (m *Manifest) GameTemplates(p Platform) []string {
	if m.Arguments != nil && len(m.Arguments.Game) > 0 {
		return filterArguments(m.Arguments.Game, p)
	}
	if m.MinecraftArguments == "" {
		return nil
	}
	return strings.Fields(m.MinecraftArguments)
}

func filterArguments(args []Argument, p Platform) []string {
	var out []string
	for _, arg := range args {
		if len(arg.Rules) > 0 && !RulesAllow(arg.Rules, p) {
			continue
		}
		out = append(out, arg.Values...)
	}
	return out
}
