package publish

import (
	"testing"

	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

func TestNewSkeleton_CoreFields(t *testing.T) {
	inst := baseInstance()
	skeleton := NewSkeleton(inst, DefaultConfig())

	if skeleton.ProductName != "renderMain" || skeleton.ProductType != "render" {
		t.Errorf("product identity = %s/%s", skeleton.ProductName, skeleton.ProductType)
	}
	if skeleton.Family != "render" {
		t.Errorf("Family = %q, expected render", skeleton.Family)
	}
	if skeleton.FrameStart != 1 || skeleton.FrameEnd != 2 || skeleton.FPS != 24 {
		t.Errorf("timing = %d..%d @ %v", skeleton.FrameStart, skeleton.FrameEnd, skeleton.FPS)
	}
	if skeleton.Source != "/work/sh010_lighting_v004.ma" {
		t.Errorf("Source = %q, expected the context workfile", skeleton.Source)
	}
	if skeleton.Representations == nil || len(skeleton.Representations) != 0 {
		t.Error("skeleton must start with an empty representation list")
	}
}

func TestNewSkeleton_FamilyTransfer(t *testing.T) {
	inst := baseInstance()
	inst.Families = []string{"render3d", "slate", "irrelevant"}

	skeleton := NewSkeleton(inst, DefaultConfig())

	if !skeleton.HasFamily("render3d") {
		t.Error("render3d must transfer to the skeleton")
	}
	if !skeleton.HasFamily("slate") {
		t.Error("slate must transfer to the skeleton")
	}
	if skeleton.HasFamily("irrelevant") {
		t.Error("families outside the transfer list must not travel")
	}
}

func TestNewSkeleton_AttributeTransfer(t *testing.T) {
	inst := baseInstance()
	inst.Families = []string{"slate", "review"}
	inst.Attributes = map[string]any{
		"slateFrames": 1,
		"slate":       true,
		"lutPath":     "/luts/show.cube",
		"unrelated":   "value",
	}

	skeleton := NewSkeleton(inst, DefaultConfig())

	if skeleton.Attributes["slateFrames"] != 1 || skeleton.Attributes["slate"] != true {
		t.Errorf("slate attributes not transferred: %v", skeleton.Attributes)
	}
	if skeleton.Attributes["lutPath"] != "/luts/show.cube" {
		t.Errorf("review attributes not transferred: %v", skeleton.Attributes)
	}
	if _, ok := skeleton.Attributes["unrelated"]; ok {
		t.Error("attributes outside the transfer table must not travel")
	}
}

func TestNewSkeleton_Render2DVersionTransfer(t *testing.T) {
	inst := baseInstance()
	inst.Families = []string{"render2d"}
	inst.Version = 7

	skeleton := NewSkeleton(inst, DefaultConfig())
	if skeleton.Version != 7 {
		t.Errorf("Version = %d, expected 7 via the render2d transfer", skeleton.Version)
	}
}

func TestAttachToProduct(t *testing.T) {
	instances := []*models.SkeletonInstance{
		{ProductName: "renderMain_beauty", ProductType: "render"},
		{ProductName: "renderMain_Z", ProductType: "render"},
	}
	targets := []models.AttachTarget{
		{ProductName: "compMain", ProductType: "plate", Version: 3},
	}

	attached := AttachToProduct(targets, instances)
	if len(attached) != 2 {
		t.Fatalf("expected 2 re-parented instances, got %d", len(attached))
	}
	for _, instance := range attached {
		if instance.ProductName != "compMain" {
			t.Errorf("ProductName = %q, expected compMain", instance.ProductName)
		}
		if instance.ProductType != "plate" {
			t.Errorf("ProductType = %q, expected plate", instance.ProductType)
		}
		if instance.Version != 3 {
			t.Errorf("Version = %d, expected 3", instance.Version)
		}
		if !instance.Append {
			t.Error("re-parented instances must be marked for append-mode integration")
		}
	}
}

func TestAttachToProduct_KeepsTransferredVersion(t *testing.T) {
	instances := []*models.SkeletonInstance{
		{ProductName: "renderMain", ProductType: "render", Version: 7},
	}
	targets := []models.AttachTarget{{ProductName: "compMain"}}

	attached := AttachToProduct(targets, instances)
	if attached[0].Version != 7 {
		t.Errorf("Version = %d, a target without a version must not clear it", attached[0].Version)
	}
}

func TestAttachToProduct_NoTargets(t *testing.T) {
	instances := []*models.SkeletonInstance{{ProductName: "renderMain"}}
	if got := AttachToProduct(nil, instances); len(got) != 1 || got[0] != instances[0] {
		t.Error("no attach targets must leave instances untouched")
	}
}
