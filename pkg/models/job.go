package models

// RenderJob is the opaque record Deadline returned for the original
// render submission. Only identity and linkage fields are read from it;
// when no prior submission exists (tile-only flows) a minimal record is
// fabricated from context.
type RenderJob struct {
	ID    string   `json:"_id,omitempty"`
	Props JobProps `json:"Props"`
}

// JobProps carries the submission identity of a render job.
type JobProps struct {
	Batch string `json:"Batch,omitempty"`
	User  string `json:"User,omitempty"`
	// Machine is the host that produced the submission; fabricated
	// records fill it from the local machine.
	Machine string            `json:"Machine,omitempty"`
	Env     map[string]string `json:"Env,omitempty"`
}

// PublishJob is the persisted publish-job description. It is written
// once to the metadata file and never mutated after.
type PublishJob struct {
	FolderPath string  `json:"folderPath"`
	FrameStart int     `json:"frameStart"`
	FrameEnd   int     `json:"frameEnd"`
	FPS        float64 `json:"fps"`
	Source     string  `json:"source"`
	User       string  `json:"user"`
	// Version is the workfile version the render was produced from.
	Version int    `json:"version"`
	Intent  string `json:"intent"`
	Comment string `json:"comment"`

	Job       *RenderJob          `json:"job"`
	Instances []*SkeletonInstance `json:"instances"`

	// DeadlinePublishJobID is present only when a dependent job was
	// actually submitted.
	DeadlinePublishJobID string `json:"deadline_publish_job_id,omitempty"`

	// Audio is present only when the context names an audio file that
	// exists on disk at write time.
	Audio string `json:"audio,omitempty"`
}
