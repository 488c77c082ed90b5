package publish

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/RajMahato-tech/ayon-deadline/pkg/anatomy"
	"github.com/RajMahato-tech/ayon-deadline/pkg/ayon"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

type fakeSubmitClient struct {
	payload *models.JobPayload
	id      string
	err     error
}

func (f *fakeSubmitClient) SubmitJob(_ context.Context, payload *models.JobPayload) (string, error) {
	f.payload = payload
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeVersions struct {
	last   *ayon.Version
	called bool
}

func (f *fakeVersions) GetLastVersionByProductName(_ context.Context, _, _, _ string) (*ayon.Version, error) {
	f.called = true
	return f.last, nil
}

func testAnatomy() *anatomy.Anatomy {
	return &anatomy.Anatomy{
		ProjectName: "demo",
		Roots:       map[string]string{"work": "/mnt/projects"},
		Templates: map[string]map[string]anatomy.Template{
			"publish": {
				"default": {Directory: "{root[work]}/{project[name]}/{subset}/v{version:0>3}"},
			},
		},
	}
}

func submitInstance() *models.RenderInstance {
	inst := baseInstance()
	inst.FolderEntity = &models.FolderEntity{ID: "folder-1"}
	inst.AnatomyData = map[string]any{
		"project": map[string]any{"name": "demo"},
		"task":    map[string]any{"name": "lighting", "type": "Lighting"},
	}
	return inst
}

func newTestSubmitter(cfg Config, client jobSubmitter, versions versionQuerier) *Submitter {
	return &Submitter{
		Config: cfg,
		Client: client,
		Resolver: &FolderResolver{
			Anatomy:  testAnatomy(),
			Tracking: versions,
			Settings: &ayon.ProjectSettings{},
			Logger:   testLogger(),
		},
		Logger: testLogger(),
	}
}

func renderJobWithID(id string) *models.RenderJob {
	return &models.RenderJob{
		ID:    id,
		Props: models.JobProps{Batch: "sh010_lighting_v004", User: "artist"},
	}
}

func TestSubmit_Payload(t *testing.T) {
	t.Setenv("AYON_DEFAULT_SETTINGS_VARIANT", "")

	client := &fakeSubmitClient{id: "pub-1"}
	versions := &fakeVersions{last: &ayon.Version{Version: 4}}
	submitter := newTestSubmitter(DefaultConfig(), client, versions)

	inst := submitInstance()
	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}

	id, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons)
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	if id != "pub-1" {
		t.Errorf("job id = %q, expected pub-1", id)
	}

	info := client.payload.JobInfo
	if info.Plugin != "Ayon" {
		t.Errorf("Plugin = %q, expected Ayon", info.Plugin)
	}
	if info.Name != "Publish - renderMain" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.BatchName != "sh010_lighting_v004" || info.UserName != "artist" {
		t.Errorf("batch/user = %q/%q, expected values from the render job", info.BatchName, info.UserName)
	}
	if info.OutputDirectory != "/mnt/projects/demo/renderMain/v005" {
		t.Errorf("OutputDirectory = %q, expected auto-incremented v005", info.OutputDirectory)
	}
	if len(info.Dependencies) != 1 || info.Dependencies[0] != "abc123" {
		t.Errorf("Dependencies = %v, expected [abc123]", info.Dependencies)
	}
	if info.InitialStatus != "Active" {
		t.Errorf("InitialStatus = %q, expected Active", info.InitialStatus)
	}
	if info.Priority != defaultPriority {
		t.Errorf("Priority = %d, expected the %d default", info.Priority, defaultPriority)
	}

	plugin := client.payload.PluginInfo
	if plugin.Version != "3.0" || plugin.SingleFrameOnly != "True" {
		t.Errorf("PluginInfo = %+v", plugin)
	}
	wantArgs := fmt.Sprintf("--headless publish %q --targets deadline --targets farm",
		"/renders/sh010/renderMain_metadata.json")
	if plugin.Arguments != wantArgs {
		t.Errorf("Arguments = %q, expected %q", plugin.Arguments, wantArgs)
	}

	if client.payload.AuxFiles == nil || len(client.payload.AuxFiles) != 0 {
		t.Errorf("AuxFiles = %v, expected an empty list", client.payload.AuxFiles)
	}
}

func TestSubmit_DependencyPriority(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*models.RenderInstance)
		wantDeps []string
	}{
		{
			name: "tile assembly wins over everything",
			mutate: func(inst *models.RenderInstance) {
				inst.TileRendering = true
				inst.AssemblySubmissionJobs = []string{"tile-1", "tile-2"}
				inst.BakingSubmissionJobs = []string{"bake-1"}
			},
			wantDeps: []string{"tile-1", "tile-2"},
		},
		{
			name: "baking wins over the render job",
			mutate: func(inst *models.RenderInstance) {
				inst.BakingSubmissionJobs = []string{"bake-1"}
			},
			wantDeps: []string{"bake-1"},
		},
		{
			name: "assembly jobs without tile rendering fall through to baking",
			mutate: func(inst *models.RenderInstance) {
				inst.AssemblySubmissionJobs = []string{"tile-1"}
				inst.BakingSubmissionJobs = []string{"bake-1"}
			},
			wantDeps: []string{"bake-1"},
		},
		{
			name:     "render job is the fallback",
			mutate:   func(*models.RenderInstance) {},
			wantDeps: []string{"abc123"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeSubmitClient{id: "pub-1"}
			submitter := newTestSubmitter(DefaultConfig(), client, &fakeVersions{})

			inst := submitInstance()
			tc.mutate(inst)

			skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
			if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
				t.Fatalf("Submit() returned error: %v", err)
			}

			deps := client.payload.JobInfo.Dependencies
			if len(deps) != len(tc.wantDeps) {
				t.Fatalf("Dependencies = %v, expected %v", deps, tc.wantDeps)
			}
			for i := range deps {
				if deps[i] != tc.wantDeps[i] {
					t.Errorf("Dependencies[%d] = %q, expected %q", i, deps[i], tc.wantDeps[i])
				}
			}
		})
	}
}

func TestSubmit_SecondaryPoolStripped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SecondaryPool = "overflow"

	client := &fakeSubmitClient{id: "pub-1"}
	submitter := newTestSubmitter(cfg, client, &fakeVersions{})

	inst := submitInstance()
	inst.SecondaryPool = "instance-overflow"

	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
	if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	if client.payload.JobInfo.SecondaryPool != "" {
		t.Errorf("SecondaryPool = %q, expected it stripped from the payload",
			client.payload.JobInfo.SecondaryPool)
	}
}

func TestSubmit_VersionOverride(t *testing.T) {
	t.Run("explicit version skips the tracking query", func(t *testing.T) {
		client := &fakeSubmitClient{id: "pub-1"}
		versions := &fakeVersions{last: &ayon.Version{Version: 9}}
		submitter := newTestSubmitter(DefaultConfig(), client, versions)

		inst := submitInstance()
		inst.Version = 7

		skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
		if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
			t.Fatalf("Submit() returned error: %v", err)
		}

		if versions.called {
			t.Error("an explicit version must not query the tracking service")
		}
		if got := client.payload.JobInfo.OutputDirectory; got != "/mnt/projects/demo/renderMain/v007" {
			t.Errorf("OutputDirectory = %q, expected v007", got)
		}
	})

	t.Run("version 1 means no override", func(t *testing.T) {
		client := &fakeSubmitClient{id: "pub-1"}
		versions := &fakeVersions{last: &ayon.Version{Version: 4}}
		submitter := newTestSubmitter(DefaultConfig(), client, versions)

		inst := submitInstance()
		inst.Version = 1

		skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
		if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
			t.Fatalf("Submit() returned error: %v", err)
		}

		if !versions.called {
			t.Error("the collected default version must trigger auto-resolution")
		}
		if got := client.payload.JobInfo.OutputDirectory; got != "/mnt/projects/demo/renderMain/v005" {
			t.Errorf("OutputDirectory = %q, expected v005", got)
		}
	})
}

func TestSubmit_PriorityPrecedence(t *testing.T) {
	cases := []struct {
		name         string
		cfgPriority  int
		instPriority int
		want         int
	}{
		{"plugin override wins", 80, 60, 80},
		{"instance value next", 0, 60, 60},
		{"default last", 0, 0, defaultPriority},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Priority = tc.cfgPriority

			client := &fakeSubmitClient{id: "pub-1"}
			submitter := newTestSubmitter(cfg, client, &fakeVersions{})

			inst := submitInstance()
			inst.Priority = tc.instPriority

			skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
			if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
				t.Fatalf("Submit() returned error: %v", err)
			}
			if got := client.payload.JobInfo.Priority; got != tc.want {
				t.Errorf("Priority = %d, expected %d", got, tc.want)
			}
		})
	}
}

func TestSubmit_MetadataPathNotEscaped(t *testing.T) {
	client := &fakeSubmitClient{id: "pub-1"}
	submitter := newTestSubmitter(DefaultConfig(), client, &fakeVersions{})

	inst := submitInstance()
	inst.OutputDir = `P:\demo\sh010`

	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
	if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	args := client.payload.PluginInfo.Arguments
	if !strings.Contains(args, `"P:\demo\sh010`) {
		t.Errorf("Arguments = %q, expected the path quoted verbatim", args)
	}
	if strings.Contains(args, `\\`) {
		t.Errorf("Arguments = %q, backslashes must not be escaped", args)
	}
}

func TestSubmit_StagingVariant(t *testing.T) {
	t.Setenv("AYON_DEFAULT_SETTINGS_VARIANT", "staging")

	client := &fakeSubmitClient{id: "pub-1"}
	submitter := newTestSubmitter(DefaultConfig(), client, &fakeVersions{})

	inst := submitInstance()
	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
	if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	if args := client.payload.PluginInfo.Arguments; !strings.HasSuffix(args, "--use-staging") {
		t.Errorf("Arguments = %q, expected trailing --use-staging", args)
	}
}

func TestSubmit_Environment(t *testing.T) {
	t.Setenv("FTRACK_API_USER", "svc-ftrack")
	t.Setenv("AYON_USERNAME", "env-user")
	t.Setenv("KITSU_LOGIN", "")

	client := &fakeSubmitClient{id: "pub-1"}
	submitter := newTestSubmitter(DefaultConfig(), client, &fakeVersions{})

	inst := submitInstance()
	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
	if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	env := make(map[string]string)
	order := make([]string, 0)
	for _, e := range client.payload.JobInfo.Environment {
		if _, dup := env[e.Key]; dup {
			t.Errorf("duplicate environment key %q", e.Key)
		}
		env[e.Key] = e.Value
		order = append(order, e.Key)
	}

	if order[0] != "AYON_PROJECT_NAME" || env["AYON_PROJECT_NAME"] != "demo" {
		t.Errorf("first entry = %s=%s, expected AYON_PROJECT_NAME=demo", order[0], env[order[0]])
	}
	if env["AYON_PUBLISH_JOB"] != "1" || env["AYON_RENDER_JOB"] != "0" || env["AYON_REMOTE_PUBLISH"] != "0" {
		t.Errorf("job role flags wrong: %v", env)
	}
	if env["AYON_LOG_NO_COLORS"] != "1" {
		t.Errorf("AYON_LOG_NO_COLORS = %q", env["AYON_LOG_NO_COLORS"])
	}
	// The allow-list pass overwrites the context-seeded value in place.
	if env["AYON_USERNAME"] != "env-user" {
		t.Errorf("AYON_USERNAME = %q, expected the process-env value to win", env["AYON_USERNAME"])
	}
	if order[3] != "AYON_USERNAME" {
		t.Errorf("order[3] = %s, expected the overwritten entry to keep its position", order[3])
	}
	if env["FTRACK_API_USER"] != "svc-ftrack" {
		t.Errorf("FTRACK_API_USER = %q, expected the forwarded value", env["FTRACK_API_USER"])
	}
	if _, ok := env["KITSU_LOGIN"]; ok {
		t.Error("unset allow-list variables must not be forwarded")
	}
	if _, ok := env["AYON_SERVER_URL"]; ok {
		t.Error("the server URL must not be forwarded unless opted in")
	}
}

func TestSubmit_EnvironmentServerURLOptIn(t *testing.T) {
	t.Setenv("AYON_SERVER_URL", "https://ayon.example.com")

	cfg := DefaultConfig()
	cfg.ForwardServerURL = true

	client := &fakeSubmitClient{id: "pub-1"}
	submitter := newTestSubmitter(cfg, client, &fakeVersions{})

	inst := submitInstance()
	skeletons := []*models.SkeletonInstance{{ProductName: "renderMain", ProductType: "render"}}
	if _, err := submitter.Submit(context.Background(), inst, renderJobWithID("abc123"), skeletons); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	for _, e := range client.payload.JobInfo.Environment {
		if e.Key == "AYON_SERVER_URL" {
			if e.Value != "https://ayon.example.com" {
				t.Errorf("AYON_SERVER_URL = %q", e.Value)
			}
			return
		}
	}
	t.Error("opted-in server URL missing from the job environment")
}
