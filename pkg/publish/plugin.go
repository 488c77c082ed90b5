package publish

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/RajMahato-tech/ayon-deadline/pkg/anatomy"
	"github.com/RajMahato-tech/ayon-deadline/pkg/ayon"
	"github.com/RajMahato-tech/ayon-deadline/pkg/deadline"
	"github.com/RajMahato-tech/ayon-deadline/pkg/logging"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// Plugin processes one submitted render instance: it synthesizes the
// publish instances, posts the dependent Deadline job and writes the
// metadata file the farm-side publish consumes. The whole sequence is
// synchronous; any failure aborts the instance with no partial state
// beyond a possibly submitted job.
type Plugin struct {
	Config   Config
	Anatomy  *anatomy.Anatomy
	Settings *ayon.ProjectSettings
	Tracking versionQuerier
	Logger   *logging.Logger

	// NewDeadlineClient builds the webservice client for an instance's
	// configured server. Tests swap it for a fake.
	NewDeadlineClient func(info *models.DeadlineInfo) jobSubmitter
}

// NewPlugin wires a plugin with the production Deadline client factory.
func NewPlugin(
	cfg Config,
	projectAnatomy *anatomy.Anatomy,
	settings *ayon.ProjectSettings,
	tracking versionQuerier,
	logger *logging.Logger,
) *Plugin {
	return &Plugin{
		Config:   cfg,
		Anatomy:  projectAnatomy,
		Settings: settings,
		Tracking: tracking,
		Logger:   logger,
		NewDeadlineClient: func(info *models.DeadlineInfo) jobSubmitter {
			var auth *deadline.Auth
			if info.AuthUser != "" {
				auth = &deadline.Auth{Username: info.AuthUser, Password: info.AuthPass}
			}
			return deadline.NewClient(info.URL, auth, info.Verify)
		},
	}
}

// Process runs the full collect -> synthesize -> submit -> write
// sequence for one render instance.
func (p *Plugin) Process(ctx context.Context, inst *models.RenderInstance) error {
	if !inst.Farm {
		p.Logger.Debugf("skipping local instance %q", inst.ProductName)
		return nil
	}

	skeleton := NewSkeleton(inst, p.Config)

	synthesizer := &Synthesizer{Config: p.Config, Logger: p.Logger}
	instances, err := synthesizer.Synthesize(inst, skeleton)
	if err != nil {
		return err
	}

	instances = AttachToProduct(inst.AttachTo, instances)

	renderJob := inst.DeadlineSubmissionJob
	if renderJob == nil {
		if !inst.TileRendering {
			return fmt.Errorf("cannot continue without a valid Deadline submission")
		}
		renderJob = p.fabricateRenderJob(inst)
	}

	if inst.Deadline == nil || inst.Deadline.URL == "" {
		return fmt.Errorf("instance %q carries no Deadline webservice URL", inst.ProductName)
	}

	submitter := &Submitter{
		Config: p.Config,
		Client: p.NewDeadlineClient(inst.Deadline),
		Resolver: &FolderResolver{
			Anatomy:  p.Anatomy,
			Tracking: p.Tracking,
			Settings: p.Settings,
			Logger:   p.Logger,
		},
		Logger: p.Logger,
	}

	publishJobID, err := submitter.Submit(ctx, inst, renderJob, instances)
	if err != nil {
		return err
	}
	p.Logger.Infof("submitted publish job %s for %q", publishJobID, inst.ProductName)

	// The farm-side publish queries the same webservice for overrides.
	for _, instance := range instances {
		instance.Deadline = inst.Deadline
	}

	publishJob := BuildPublishJob(inst, skeleton, renderJob, instances, publishJobID)

	metadataPath := MetadataPath(inst)
	if err := WriteMetadata(metadataPath, publishJob); err != nil {
		return err
	}
	p.Logger.Infof("wrote publish metadata to %s", metadataPath)
	return nil
}

// fabricateRenderJob builds the minimal submission-identity record for
// tile flows that never had a prior farm submission.
func (p *Plugin) fabricateRenderJob(inst *models.RenderInstance) *models.RenderJob {
	p.Logger.Debugf("no render job record, faking job data")

	job := &models.RenderJob{}

	if len(inst.AssemblySubmissionJobs) > 0 && inst.JobBatchName != "" {
		job.Props.Batch = inst.JobBatchName
	} else if inst.Context != nil && inst.Context.CurrentFile != "" {
		base := filepath.Base(inst.Context.CurrentFile)
		job.Props.Batch = strings.TrimSuffix(base, filepath.Ext(base))
	}

	job.Props.User = currentUser(inst)
	if info, err := host.Info(); err == nil {
		job.Props.Machine = info.Hostname
	}

	job.Props.Env = map[string]string{
		"FTRACK_API_USER": os.Getenv("FTRACK_API_USER"),
		"FTRACK_API_KEY":  os.Getenv("FTRACK_API_KEY"),
		"FTRACK_SERVER":   os.Getenv("FTRACK_SERVER"),
	}
	return job
}

func currentUser(inst *models.RenderInstance) string {
	if inst.Context != nil && inst.Context.DeadlineUser != "" {
		return inst.Context.DeadlineUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
