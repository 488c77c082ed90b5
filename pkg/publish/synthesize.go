package publish

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/RajMahato-tech/ayon-deadline/pkg/logging"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
	"github.com/RajMahato-tech/ayon-deadline/pkg/sequence"
)

// Synthesizer converts one render instance into the downstream publish
// instances described by its expected files.
type Synthesizer struct {
	Config Config
	Logger *logging.Logger
}

// Synthesize branches on the shape of the expected files: a per-AOV
// mapping yields one instance per AOV, a flat list yields a single
// instance with one representation per detected sequence.
func (s *Synthesizer) Synthesize(
	inst *models.RenderInstance, skeleton *models.SkeletonInstance,
) ([]*models.SkeletonInstance, error) {
	if inst.ExpectedFiles.IsEmpty() {
		return nil, fmt.Errorf("instance %q has no expected files", inst.ProductName)
	}

	// An explicit review=false on the render instance suppresses
	// review tagging on every output, filter matches included.
	suppressReview := inst.Review != nil && !*inst.Review
	if suppressReview {
		s.Logger.Debugf("instance has review explicitly disabled")
	}

	if inst.ExpectedFiles.IsAOV() {
		return s.synthesizeAOVs(inst, skeleton, suppressReview)
	}
	return s.synthesizeFlat(inst, skeleton, suppressReview)
}

// synthesizeAOVs builds one skeleton copy per AOV key, in name order.
func (s *Synthesizer) synthesizeAOVs(
	inst *models.RenderInstance, skeleton *models.SkeletonInstance, suppressReview bool,
) ([]*models.SkeletonInstance, error) {
	aovs := make([]string, 0, len(inst.ExpectedFiles.ByAOV))
	for aov := range inst.ExpectedFiles.ByAOV {
		aovs = append(aovs, aov)
	}
	sort.Strings(aovs)

	hostName := ""
	if inst.Context != nil {
		hostName = inst.Context.HostName
	}

	instances := make([]*models.SkeletonInstance, 0, len(aovs))
	for _, aov := range aovs {
		files := inst.ExpectedFiles.ByAOV[aov]

		instance := skeleton.Copy()
		instance.ProductName = aovProductName(skeleton.ProductName, aov)

		reviewable := !suppressReview && s.matchesAOVFilter(hostName, instance.ProductName)
		rep, err := s.buildRepresentation(files, aov, inst.OutputDir, skeleton, reviewable)
		if err != nil {
			return nil, fmt.Errorf("AOV %q: %w", aov, err)
		}
		instance.Representations = append(instance.Representations, rep)

		s.Logger.Debugf("created instance %q for AOV %q (%d files)",
			instance.ProductName, aov, len(rep.Files))
		instances = append(instances, instance)
	}
	return instances, nil
}

// synthesizeFlat attaches one representation per detected sequence to a
// single skeleton copy.
func (s *Synthesizer) synthesizeFlat(
	inst *models.RenderInstance, skeleton *models.SkeletonInstance, suppressReview bool,
) ([]*models.SkeletonInstance, error) {
	files := inst.ExpectedFiles.Flat
	if inst.Ext != "" {
		files = filterByExt(files, inst.Ext)
		if len(files) == 0 {
			return nil, fmt.Errorf("no expected files match extension %q", inst.Ext)
		}
	}

	hostName := ""
	if inst.Context != nil {
		hostName = inst.Context.HostName
	}

	instance := skeleton.Copy()
	collections, remainder := sequence.Assemble(files)
	if len(collections) == 0 && len(remainder) == 0 {
		return nil, fmt.Errorf("instance %q has no collectable files", inst.ProductName)
	}

	for _, col := range collections {
		reviewable := !suppressReview && s.matchesAOVFilter(hostName, col.Name())
		rep := models.Representation{
			Name:       col.Name(),
			Ext:        col.Ext(),
			Files:      col.Members(),
			StagingDir: inst.OutputDir,
			FrameStart: col.FrameStart(),
			FrameEnd:   col.FrameEnd(),
		}
		s.decorate(&rep, skeleton, reviewable)
		instance.Representations = append(instance.Representations, rep)
	}

	for _, file := range remainder {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		reviewable := !suppressReview && s.matchesAOVFilter(hostName, name)
		rep := models.Representation{
			Name:       name,
			Ext:        strings.TrimPrefix(filepath.Ext(file), "."),
			Files:      []string{file},
			StagingDir: inst.OutputDir,
		}
		s.decorate(&rep, skeleton, reviewable)
		instance.Representations = append(instance.Representations, rep)
	}

	return []*models.SkeletonInstance{instance}, nil
}

// buildRepresentation makes a representation from an AOV's files,
// handling both sequences and single standalone files.
func (s *Synthesizer) buildRepresentation(
	files []string, name, stagingDir string,
	skeleton *models.SkeletonInstance, reviewable bool,
) (models.Representation, error) {
	if len(files) == 0 {
		return models.Representation{}, fmt.Errorf("no files collected")
	}

	rep := models.Representation{
		Name:       name,
		StagingDir: stagingDir,
	}

	collections, remainder := sequence.Assemble(files)
	switch {
	case len(collections) == 1 && len(remainder) == 0:
		col := collections[0]
		rep.Ext = col.Ext()
		rep.Files = col.Members()
		rep.FrameStart = col.FrameStart()
		rep.FrameEnd = col.FrameEnd()
	case len(collections) == 0 && len(remainder) == 1:
		rep.Ext = strings.TrimPrefix(filepath.Ext(remainder[0]), ".")
		rep.Files = remainder
	default:
		return models.Representation{}, fmt.Errorf("files do not form a single sequence")
	}

	s.decorate(&rep, skeleton, reviewable)
	return rep, nil
}

// decorate applies review and skip-integration tagging.
func (s *Synthesizer) decorate(rep *models.Representation, skeleton *models.SkeletonInstance, reviewable bool) {
	if reviewable {
		rep.Tags = append(rep.Tags, "review")
		rep.FPS = skeleton.FPS
	}
	for _, skip := range s.Config.SkipIntegrationRepreList {
		if rep.Name == skip {
			rep.Tags = append(rep.Tags, "delete")
			break
		}
	}
}

// matchesAOVFilter reports whether a product name matches one of the
// host's review patterns.
func (s *Synthesizer) matchesAOVFilter(hostName, productName string) bool {
	for _, pattern := range s.Config.AOVFilter[hostName] {
		re, err := regexp.Compile(pattern)
		if err != nil {
			s.Logger.Warnf("invalid AOV filter pattern %q for host %q: %v", pattern, hostName, err)
			continue
		}
		if re.MatchString(productName) {
			return true
		}
	}
	return false
}

// aovProductName combines the base product name with the AOV suffix.
// An AOV that already names the product's main pass keeps the base name.
func aovProductName(base, aov string) string {
	if aov == "" || strings.EqualFold(aov, "main") {
		return base
	}
	if strings.HasSuffix(strings.ToLower(base), strings.ToLower(aov)) {
		return base
	}
	return base + "_" + aov
}

func filterByExt(files []string, ext string) []string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var out []string
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ext) {
			out = append(out, f)
		}
	}
	return out
}
