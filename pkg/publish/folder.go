package publish

import (
	"context"
	"fmt"

	"github.com/RajMahato-tech/ayon-deadline/pkg/anatomy"
	"github.com/RajMahato-tech/ayon-deadline/pkg/ayon"
	"github.com/RajMahato-tech/ayon-deadline/pkg/logging"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// versionQuerier is the narrow slice of the tracking service the
// resolver needs.
type versionQuerier interface {
	GetLastVersionByProductName(ctx context.Context, projectName, productName, folderID string) (*ayon.Version, error)
}

// FolderResolver pre-computes the publish output directory for a
// product. The full integration recomputes this later on the farm; the
// value is needed now, synchronously, to place it in the job payload.
// Drift between the two computations is a known consistency risk.
type FolderResolver struct {
	Anatomy  *anatomy.Anatomy
	Tracking versionQuerier
	Settings *ayon.ProjectSettings
	Logger   *logging.Logger
}

// Resolve formats the publish directory for the product. With no
// explicit version the latest known version plus one is used; a product
// with no versions at all starts at the configured versioning start.
func (r *FolderResolver) Resolve(
	ctx context.Context,
	templateData map[string]any,
	folder *models.FolderEntity,
	productName string,
	pctx *models.Context,
	productType string,
	version *int,
) (string, error) {
	taskName, taskType := taskInfo(templateData)

	resolved := 0
	if version != nil {
		resolved = *version
	} else {
		var last *ayon.Version
		if folder != nil {
			var err error
			last, err = r.Tracking.GetLastVersionByProductName(ctx, pctx.ProjectName, productName, folder.ID)
			if err != nil {
				return "", fmt.Errorf("failed to resolve last version of %q: %w", productName, err)
			}
		}
		if last != nil {
			resolved = last.Version + 1
		} else {
			resolved = r.Settings.VersionStart(
				pctx.HostName, taskName, taskType, productType, productName)
			r.Logger.Debugf("no published version of %q, starting at %d", productName, resolved)
		}
	}

	templateName := r.Settings.PublishTemplateName(pctx.HostName, productType, taskName, taskType)

	data := make(map[string]any, len(templateData)+4)
	for k, v := range templateData {
		data[k] = v
	}
	data["version"] = resolved
	data["subset"] = productName
	data["family"] = productType
	data["product"] = map[string]any{
		"name": productName,
		"type": productType,
	}

	tpl, err := r.Anatomy.TemplateItem("publish", templateName)
	if err != nil {
		return "", err
	}
	dir, err := r.Anatomy.FormatStrict(tpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to format publish directory: %w", err)
	}
	return dir, nil
}

// taskInfo pulls task name and type out of pre-collected template data.
func taskInfo(templateData map[string]any) (string, string) {
	task, ok := templateData["task"].(map[string]any)
	if !ok {
		return "", ""
	}
	name, _ := task["name"].(string)
	taskType, _ := task["type"].(string)
	return name, taskType
}
