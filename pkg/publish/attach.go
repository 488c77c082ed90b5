package publish

import (
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// AttachToProduct re-parents synthesized instances under the named
// attach targets. The re-parented copies take the target's product
// identity and are marked for append-mode integration, so their
// representations extend the target product instead of publishing as
// top-level instances.
func AttachToProduct(
	targets []models.AttachTarget, instances []*models.SkeletonInstance,
) []*models.SkeletonInstance {
	if len(targets) == 0 {
		return instances
	}

	attached := make([]*models.SkeletonInstance, 0, len(targets)*len(instances))
	for _, target := range targets {
		for _, instance := range instances {
			clone := instance.Copy()
			clone.ProductName = target.ProductName
			if target.ProductType != "" {
				clone.ProductType = target.ProductType
				clone.Family = target.ProductType
			}
			if target.Version != 0 {
				clone.Version = target.Version
			}
			clone.Append = true
			attached = append(attached, clone)
		}
	}
	return attached
}
