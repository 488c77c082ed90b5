package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EnvEntry is one forwarded environment variable. Entries keep their
// insertion order so the indexed EnvironmentKeyValueN keys are stable.
type EnvEntry struct {
	Key   string
	Value string
}

// JobInfo is the Deadline JobInfo block of a submission payload.
// Dependencies and Environment render as the indexed JobDependencyN and
// EnvironmentKeyValueN keys Deadline expects.
type JobInfo struct {
	Plugin        string
	BatchName     string
	Name          string
	UserName      string
	Comment       string
	Department    string
	ChunkSize     int
	Priority      int
	InitialStatus string
	Group         string
	Pool          string
	SecondaryPool string

	// OutputDirectory becomes OutputDirectory0; slashes are normalized
	// to forward slashes on render.
	OutputDirectory string

	Dependencies []string
	Environment  []EnvEntry
}

// MarshalJSON flattens the block into the key/value form of the
// Deadline webservice API.
func (ji JobInfo) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"Plugin":        ji.Plugin,
		"BatchName":     ji.BatchName,
		"Name":          ji.Name,
		"UserName":      ji.UserName,
		"Comment":       ji.Comment,
		"Department":    ji.Department,
		"ChunkSize":     ji.ChunkSize,
		"Priority":      ji.Priority,
		"InitialStatus": ji.InitialStatus,
		"Group":         ji.Group,
		"Pool":          ji.Pool,
	}
	if ji.SecondaryPool != "" {
		out["SecondaryPool"] = ji.SecondaryPool
	}
	if ji.OutputDirectory != "" {
		out["OutputDirectory0"] = strings.ReplaceAll(ji.OutputDirectory, "\\", "/")
	}
	for i, dep := range ji.Dependencies {
		out[fmt.Sprintf("JobDependency%d", i)] = dep
	}
	for i, env := range ji.Environment {
		out[fmt.Sprintf("EnvironmentKeyValue%d", i)] = fmt.Sprintf("%s=%s", env.Key, env.Value)
	}
	return json.Marshal(out)
}

// PluginInfo is the Deadline PluginInfo block of a submission payload.
type PluginInfo struct {
	Version         string `json:"Version"`
	Arguments       string `json:"Arguments"`
	SingleFrameOnly string `json:"SingleFrameOnly"`
}

// JobPayload is the full body POSTed to {webservice}/api/jobs.
// AuxFiles is mandatory for Deadline and may be empty.
type JobPayload struct {
	JobInfo    JobInfo    `json:"JobInfo"`
	PluginInfo PluginInfo `json:"PluginInfo"`
	AuxFiles   []string   `json:"AuxFiles"`
}

// NewJobPayload returns a payload with the always-empty AuxFiles list
// initialized so it serializes as [] rather than null.
func NewJobPayload(info JobInfo, plugin PluginInfo) *JobPayload {
	return &JobPayload{
		JobInfo:    info,
		PluginInfo: plugin,
		AuxFiles:   []string{},
	}
}
