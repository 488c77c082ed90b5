package models

import (
	"encoding/json"
	"fmt"
)

// ExpectedFiles holds the output-file expectations of a render instance.
//
// The collected pipeline declares expected files in one of two shapes:
// a flat list of file names, or a list containing a single mapping of
// AOV name to file names. The shape is resolved once at decode time so
// downstream code branches on it explicitly.
type ExpectedFiles struct {
	// Flat is set for the plain list shape.
	Flat []string
	// ByAOV is set for the per-AOV mapping shape.
	ByAOV map[string][]string
}

// IsAOV reports whether the expectations are declared per AOV.
func (e *ExpectedFiles) IsAOV() bool {
	return e.ByAOV != nil
}

// IsEmpty reports whether no files are expected at all.
func (e *ExpectedFiles) IsEmpty() bool {
	return len(e.Flat) == 0 && len(e.ByAOV) == 0
}

// UnmarshalJSON accepts either ["a.0001.exr", ...] or
// [{"beauty": [...], "Z": [...]}].
func (e *ExpectedFiles) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expectedFiles is not a list: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	var byAOV map[string][]string
	if err := json.Unmarshal(raw[0], &byAOV); err == nil {
		if len(raw) > 1 {
			return fmt.Errorf("expectedFiles mapping must be the only element, got %d", len(raw))
		}
		e.ByAOV = byAOV
		return nil
	}

	var flat []string
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("expectedFiles must be file names or one AOV mapping: %w", err)
	}
	e.Flat = flat
	return nil
}

// MarshalJSON renders the shape it was decoded from.
func (e ExpectedFiles) MarshalJSON() ([]byte, error) {
	if e.ByAOV != nil {
		return json.Marshal([]map[string][]string{e.ByAOV})
	}
	return json.Marshal(e.Flat)
}

// DeadlineInfo identifies the webservice the render job was submitted to.
type DeadlineInfo struct {
	URL      string `json:"url"`
	AuthUser string `json:"authUser,omitempty"`
	AuthPass string `json:"authPass,omitempty"`
	Verify   bool   `json:"verify"`
}

// AttachTarget names a product that synthesized instances should be
// re-parented under instead of being published on their own.
type AttachTarget struct {
	ProductName string `json:"productName"`
	ProductType string `json:"productType,omitempty"`
	Version     int    `json:"version,omitempty"`
}

// Context carries the publish-context data shared by all instances of
// one processing pass.
type Context struct {
	ProjectName string `json:"projectName"`
	FolderPath  string `json:"folderPath"`
	Task        string `json:"task"`
	TaskType    string `json:"taskType,omitempty"`
	HostName    string `json:"hostName"`
	User        string `json:"user"`
	CurrentFile string `json:"currentFile,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Intent      string `json:"intent,omitempty"`
	// Version is the workfile version, not a product version.
	Version      int     `json:"version,omitempty"`
	FPS          float64 `json:"fps,omitempty"`
	AudioFile    string  `json:"audioFile,omitempty"`
	DeadlineUser string  `json:"deadlineUser,omitempty"`
}

// FolderEntity is the tracking-service folder the products live under.
type FolderEntity struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// RenderInstance is the triggering unit: a completed farm render waiting
// for its publish job to be created. It is consumed exactly once.
type RenderInstance struct {
	ProductName string `json:"productName"`
	ProductType string `json:"productType"`
	// Family mirrors ProductType for legacy template data.
	Family   string   `json:"family,omitempty"`
	Families []string `json:"families,omitempty"`

	FolderPath string  `json:"folderPath"`
	FrameStart int     `json:"frameStart"`
	FrameEnd   int     `json:"frameEnd"`
	FPS        float64 `json:"fps"`
	Source     string  `json:"source,omitempty"`

	Farm          bool          `json:"farm"`
	ExpectedFiles ExpectedFiles `json:"expectedFiles"`
	OutputDir     string        `json:"outputDir"`
	Ext           string        `json:"ext,omitempty"`

	// Review is a tri-state: nil means "not specified", an explicit
	// false suppresses review tagging on every output representation.
	Review *bool `json:"review,omitempty"`

	// Version 1 is the collected default and means "no override".
	Version int `json:"version,omitempty"`

	Priority      int    `json:"priority,omitempty"`
	PrimaryPool   string `json:"primaryPool,omitempty"`
	SecondaryPool string `json:"secondaryPool,omitempty"`

	PublishJobState string `json:"publishJobState,omitempty"`

	TileRendering          bool     `json:"tileRendering,omitempty"`
	AssemblySubmissionJobs []string `json:"assemblySubmissionJobs,omitempty"`
	BakingSubmissionJobs   []string `json:"bakingSubmissionJobs,omitempty"`
	JobBatchName           string   `json:"jobBatchName,omitempty"`

	AttachTo []AttachTarget `json:"attachTo,omitempty"`

	DeadlineSubmissionJob *RenderJob    `json:"deadlineSubmissionJob,omitempty"`
	Deadline              *DeadlineInfo `json:"deadline,omitempty"`

	FolderEntity *FolderEntity `json:"folderEntity,omitempty"`

	// AnatomyData is the pre-collected template data for this instance.
	AnatomyData map[string]any `json:"anatomyData,omitempty"`

	// Attributes holds host-specific keys subject to the per-family
	// transfer tables (slateFrames, lutPath, bakingNukeScripts, ...).
	Attributes map[string]any `json:"attributes,omitempty"`

	Context *Context `json:"context,omitempty"`
}

// Representation is one deliverable file or file-sequence.
type Representation struct {
	Name       string   `json:"name"`
	Ext        string   `json:"ext"`
	Files      []string `json:"files"`
	StagingDir string   `json:"stagingDir,omitempty"`
	FrameStart int      `json:"frameStart,omitempty"`
	FrameEnd   int      `json:"frameEnd,omitempty"`
	FPS        float64  `json:"fps,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// HasTag reports whether the representation carries the given tag.
func (r *Representation) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SkeletonInstance is the render-instance-independent description handed
// to the farm-side integration. One render instance yields one skeleton
// for flat expectations or one per AOV for mapped expectations.
type SkeletonInstance struct {
	ProductName string   `json:"productName"`
	ProductType string   `json:"productType"`
	Family      string   `json:"family,omitempty"`
	Families    []string `json:"families,omitempty"`

	FolderPath string  `json:"folderPath"`
	FrameStart int     `json:"frameStart"`
	FrameEnd   int     `json:"frameEnd"`
	FPS        float64 `json:"fps"`
	Source     string  `json:"source,omitempty"`
	Comment    string  `json:"comment,omitempty"`

	// Version is only carried when transferred from the render
	// instance or forced by an attach target.
	Version int `json:"version,omitempty"`

	Representations []Representation `json:"representations"`

	Attributes map[string]any `json:"attributes,omitempty"`

	// Append marks an instance re-parented under an attach target; the
	// integrator appends its representations to the existing product.
	Append bool `json:"append,omitempty"`

	Deadline *DeadlineInfo `json:"deadline,omitempty"`
}

// Copy returns a deep enough copy for per-AOV fan-out: slices and the
// attribute map are duplicated, values are shared.
func (s *SkeletonInstance) Copy() *SkeletonInstance {
	out := *s
	out.Families = append([]string(nil), s.Families...)
	out.Representations = append([]Representation(nil), s.Representations...)
	if s.Attributes != nil {
		out.Attributes = make(map[string]any, len(s.Attributes))
		for k, v := range s.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// HasFamily reports whether the family tag is present on the instance.
func (s *SkeletonInstance) HasFamily(family string) bool {
	if s.Family == family {
		return true
	}
	for _, f := range s.Families {
		if f == family {
			return true
		}
	}
	return false
}
