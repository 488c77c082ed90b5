package publish

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RajMahato-tech/ayon-deadline/pkg/logging"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// jobSubmitter is the slice of the Deadline client the submitter needs.
type jobSubmitter interface {
	SubmitJob(ctx context.Context, payload *models.JobPayload) (string, error)
}

// Submitter builds and posts the dependent publish job.
type Submitter struct {
	Config   Config
	Client   jobSubmitter
	Resolver *FolderResolver
	Logger   *logging.Logger
}

// Submit posts the publish job for the synthesized instances and
// returns the farm-assigned job id. The job depends on exactly one of:
// the tile-assembly sub-jobs, the baking sub-jobs, or the original
// render job, in that priority order.
func (s *Submitter) Submit(
	ctx context.Context,
	inst *models.RenderInstance,
	renderJob *models.RenderJob,
	instances []*models.SkeletonInstance,
) (string, error) {
	if len(instances) == 0 {
		return "", fmt.Errorf("no synthesized instances to submit")
	}

	jobName := fmt.Sprintf("Publish - %s", inst.ProductName)

	// Version 1 is the collected default and means "no override
	// requested"; auto-resolution applies then.
	var overrideVersion *int
	if inst.Version != 1 && inst.Version != 0 {
		v := inst.Version
		overrideVersion = &v
	}

	outputDir, err := s.Resolver.Resolve(
		ctx,
		copyTemplateData(inst.AnatomyData),
		inst.FolderEntity,
		instances[0].ProductName,
		inst.Context,
		instances[0].ProductType,
		overrideVersion,
	)
	if err != nil {
		return "", err
	}

	metadataPath := MetadataPath(inst)
	settingsVariant := os.Getenv("AYON_DEFAULT_SETTINGS_VARIANT")

	priority := s.Config.Priority
	if priority == 0 {
		priority = inst.Priority
	}
	if priority == 0 {
		priority = defaultPriority
	}

	initialStatus := inst.PublishJobState
	if initialStatus == "" {
		initialStatus = "Active"
	}

	args := []string{
		"--headless",
		"publish",
		"\"" + metadataPath + "\"",
		"--targets", "deadline",
		"--targets", "farm",
	}
	if settingsVariant == "staging" {
		args = append(args, "--use-staging")
	}

	pool := s.Config.Pool
	if pool == "" {
		pool = inst.PrimaryPool
	}
	secondaryPool := s.Config.SecondaryPool
	if secondaryPool == "" {
		secondaryPool = inst.SecondaryPool
	}

	comment := ""
	if inst.Context != nil {
		comment = inst.Context.Comment
	}

	info := models.JobInfo{
		Plugin:          "Ayon",
		BatchName:       renderJob.Props.Batch,
		Name:            jobName,
		UserName:        renderJob.Props.User,
		Comment:         comment,
		Department:      s.Config.Department,
		ChunkSize:       1,
		Priority:        priority,
		InitialStatus:   initialStatus,
		Group:           s.Config.Group,
		Pool:            pool,
		SecondaryPool:   secondaryPool,
		OutputDirectory: outputDir,
		Environment:     s.environment(inst),
	}

	switch {
	case inst.TileRendering && len(inst.AssemblySubmissionJobs) > 0:
		s.Logger.Infof("adding %d tile assembly jobs as dependencies", len(inst.AssemblySubmissionJobs))
		info.Dependencies = append(info.Dependencies, inst.AssemblySubmissionJobs...)
	case len(inst.BakingSubmissionJobs) > 0:
		s.Logger.Infof("adding %d baking submission jobs as dependencies", len(inst.BakingSubmissionJobs))
		info.Dependencies = append(info.Dependencies, inst.BakingSubmissionJobs...)
	case renderJob.ID != "":
		info.Dependencies = append(info.Dependencies, renderJob.ID)
	}

	// SecondaryPool is filled above for parity with historical payloads
	// but is always stripped before submission.
	info.SecondaryPool = ""

	payload := models.NewJobPayload(info, models.PluginInfo{
		Version:         pluginVersion,
		Arguments:       strings.Join(args, " "),
		SingleFrameOnly: "True",
	})

	s.Logger.Debugf("submitting Deadline publish job %q", jobName)
	return s.Client.SubmitJob(ctx, payload)
}

// environment seeds the job environment with the pipeline identity
// variables and forwards every allow-listed variable currently set in
// the process environment.
func (s *Submitter) environment(inst *models.RenderInstance) []models.EnvEntry {
	pctx := inst.Context
	if pctx == nil {
		pctx = &models.Context{}
	}

	inTests := "0"
	if os.Getenv("AYON_IN_TESTS") != "" {
		inTests = "1"
	}

	fixed := []models.EnvEntry{
		{Key: "AYON_PROJECT_NAME", Value: pctx.ProjectName},
		{Key: "AYON_FOLDER_PATH", Value: pctx.FolderPath},
		{Key: "AYON_TASK_NAME", Value: pctx.Task},
		{Key: "AYON_USERNAME", Value: pctx.User},
		{Key: "AYON_LOG_NO_COLORS", Value: "1"},
		{Key: "AYON_IN_TESTS", Value: inTests},
		{Key: "AYON_PUBLISH_JOB", Value: "1"},
		{Key: "AYON_RENDER_JOB", Value: "0"},
		{Key: "AYON_REMOTE_PUBLISH", Value: "0"},
		{Key: "AYON_BUNDLE_NAME", Value: os.Getenv("AYON_BUNDLE_NAME")},
		{Key: "AYON_DEFAULT_SETTINGS_VARIANT", Value: os.Getenv("AYON_DEFAULT_SETTINGS_VARIANT")},
	}

	entries := make([]models.EnvEntry, 0, len(fixed)+len(s.Config.EnvironKeys))
	index := make(map[string]int, len(fixed))
	for _, e := range fixed {
		index[e.Key] = len(entries)
		entries = append(entries, e)
	}
	keys := s.Config.EnvironKeys
	if s.Config.ForwardServerURL {
		keys = append(append([]string(nil), keys...), "AYON_SERVER_URL")
	}
	// Allow-listed values set in the process environment win over the
	// seeded entries, keeping the entry's position.
	for _, key := range keys {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		if i, ok := index[key]; ok {
			entries[i].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, models.EnvEntry{Key: key, Value: value})
	}
	return entries
}

func copyTemplateData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
