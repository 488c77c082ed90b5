package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// MetadataPath is where the publish job description is written: inside
// the render output directory, next to the files it describes.
func MetadataPath(inst *models.RenderInstance) string {
	return filepath.Join(inst.OutputDir, inst.ProductName+"_metadata.json")
}

// BuildPublishJob assembles the final publish job description. The
// dependent job id is included only when a submission happened; the
// audio reference only when the context names a file that exists.
func BuildPublishJob(
	inst *models.RenderInstance,
	skeleton *models.SkeletonInstance,
	renderJob *models.RenderJob,
	instances []*models.SkeletonInstance,
	publishJobID string,
) *models.PublishJob {
	job := &models.PublishJob{
		FolderPath:           skeleton.FolderPath,
		FrameStart:           skeleton.FrameStart,
		FrameEnd:             skeleton.FrameEnd,
		FPS:                  skeleton.FPS,
		Source:               skeleton.Source,
		Job:                  renderJob,
		Instances:            instances,
		DeadlinePublishJobID: publishJobID,
	}

	if inst.Context != nil {
		job.User = inst.Context.User
		job.Version = inst.Context.Version
		job.Intent = inst.Context.Intent
		job.Comment = inst.Context.Comment

		if audio := inst.Context.AudioFile; audio != "" {
			if info, err := os.Stat(audio); err == nil && !info.IsDir() {
				job.Audio = audio
			}
		}
	}
	return job
}

// WriteMetadata serializes the description to path as UTF-8 JSON with
// four-space indentation and recursively sorted keys.
func WriteMetadata(path string, job *models.PublishJob) error {
	// Round-trip through a generic value so every object's keys come
	// out sorted, matching what downstream tooling diffs against.
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal publish job: %w", err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return fmt.Errorf("failed to normalize publish job: %w", err)
	}
	data, err := json.MarshalIndent(generic, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal publish job: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file %s: %w", path, err)
	}
	return nil
}
