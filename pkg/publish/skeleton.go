package publish

import (
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// NewSkeleton derives the render-instance-independent publish
// description from a render instance. The per-family transfer tables
// of the config decide which extra attributes and family tags travel
// along.
func NewSkeleton(inst *models.RenderInstance, cfg Config) *models.SkeletonInstance {
	skeleton := &models.SkeletonInstance{
		ProductName:     inst.ProductName,
		ProductType:     inst.ProductType,
		Family:          inst.ProductType,
		FolderPath:      inst.FolderPath,
		FrameStart:      inst.FrameStart,
		FrameEnd:        inst.FrameEnd,
		FPS:             inst.FPS,
		Source:          inst.Source,
		Representations: []models.Representation{},
	}
	if skeleton.Source == "" && inst.Context != nil {
		skeleton.Source = inst.Context.CurrentFile
	}
	if inst.Context != nil {
		skeleton.Comment = inst.Context.Comment
	}

	instanceFamilies := familySet(inst)

	// Family tags listed in the transfer table follow the instance.
	for _, family := range cfg.FamiliesTransfer {
		if instanceFamilies[family] {
			skeleton.Families = append(skeleton.Families, family)
		}
	}

	// Attribute keys listed for a present family are copied verbatim.
	for family, keys := range cfg.InstanceTransfer {
		if !instanceFamilies[family] {
			continue
		}
		for _, key := range keys {
			if key == "version" {
				skeleton.Version = inst.Version
				continue
			}
			value, ok := inst.Attributes[key]
			if !ok {
				continue
			}
			if skeleton.Attributes == nil {
				skeleton.Attributes = make(map[string]any)
			}
			skeleton.Attributes[key] = value
		}
	}

	return skeleton
}

func familySet(inst *models.RenderInstance) map[string]bool {
	families := make(map[string]bool, len(inst.Families)+2)
	if inst.Family != "" {
		families[inst.Family] = true
	}
	if inst.ProductType != "" {
		families[inst.ProductType] = true
	}
	for _, f := range inst.Families {
		families[f] = true
	}
	return families
}
