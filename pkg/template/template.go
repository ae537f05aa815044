package template

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/olekukonko/tablewriter"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/coreos/fedora-coreos-pipeline/pkg/cluster"
	"github.com/coreos/fedora-coreos-pipeline/pkg/config"
	"github.com/coreos/fedora-coreos-pipeline/pkg/gitref"
)

// Files are the template definitions processed on every run, in order.
var Files = []string{
	"manifests/jenkins-s2i.yaml",
	"manifests/pipeline.yaml",
}

// Parameter names fed to the template definitions.
const (
	DeveloperPrefixParam = "DEVELOPER_PREFIX"
	JenkinsS2IURLParam   = "JENKINS_S2I_URL"
	JenkinsS2IRefParam   = "JENKINS_S2I_REF"
	JenkinsJobsURLParam  = "JENKINS_JOBS_URL"
	JenkinsJobsRefParam  = "JENKINS_JOBS_REF"
	FCOSConfigURLParam   = "FCOS_CONFIG_URL"
	FCOSConfigRefParam   = "FCOS_CONFIG_REF"
	S3BucketParam        = "S3_BUCKET"
	GCPGSBucketParam     = "GCP_GS_BUCKET"
	CosaImgParam         = "COSA_IMG"
	PVCSizeParam         = "PVC_SIZE"
)

// ParameterSet maps template parameter names to their values.
type ParameterSet map[string]string

// SortedKeys returns the parameter names in lexical order.
func (p ParameterSet) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Intersect returns the subset of the parameter set whose names appear in
// the declared list.
func (p ParameterSet) Intersect(declared []string) ParameterSet {
	subset := ParameterSet{}
	for _, name := range declared {
		if value, ok := p[name]; ok {
			subset[name] = value
		}
	}
	return subset
}

// Print writes the parameter set as a table, for operator visibility only.
func (p ParameterSet) Print(writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"parameter", "value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	for _, k := range p.SortedKeys() {
		table.Append([]string{k, p[k]})
	}
	table.Render()
}

// BuildParameters assembles the parameter set from the invocation
// configuration. Each git refspec contributes a URL and a REF parameter per
// target; unresolved refspecs are resolved against the remote default branch.
// The developer prefix is omitted for official deployments.
func BuildParameters(ctx context.Context, cfg *config.Config, resolver gitref.Resolver) (ParameterSet, error) {
	params := ParameterSet{}

	if !cfg.Official {
		params[DeveloperPrefixParam] = cfg.Prefix
	}

	if cfg.Pipeline != "" {
		spec, err := gitref.Parse(ctx, cfg.Pipeline, resolver)
		if err != nil {
			return nil, fmt.Errorf("resolving --pipeline failed: %w", err)
		}
		params[JenkinsS2IURLParam] = spec.URL
		params[JenkinsS2IRefParam] = spec.Ref
		params[JenkinsJobsURLParam] = spec.URL
		params[JenkinsJobsRefParam] = spec.Ref
	}

	if cfg.Config != "" {
		spec, err := gitref.Parse(ctx, cfg.Config, resolver)
		if err != nil {
			return nil, fmt.Errorf("resolving --config failed: %w", err)
		}
		params[FCOSConfigURLParam] = spec.URL
		params[FCOSConfigRefParam] = spec.Ref
	}

	if cfg.Bucket != "" {
		params[S3BucketParam] = cfg.Bucket
	}
	if cfg.GCPGSBucket != "" {
		params[GCPGSBucketParam] = cfg.GCPGSBucket
	}
	if cfg.CosaImg != "" {
		params[CosaImgParam] = cfg.CosaImg
	}
	if cfg.PVCSize != "" {
		params[PVCSizeParam] = cfg.PVCSize
	}

	return params, nil
}

// Renderer renders the fixed template set through the cluster CLI.
type Renderer struct {
	// Client processes the template definitions.
	Client cluster.Interface
	// Dir is the repository root holding the manifests directory.
	Dir string
}

// Render processes each template definition in order with the subset of the
// parameter set the template declares, and returns the accumulated objects
// preserving template order and within-template item order. Supplied
// parameters no template declares are dropped from the invocation, not
// reported as errors.
func (r *Renderer) Render(ctx context.Context, params ParameterSet) ([]*unstructured.Unstructured, error) {
	var objects []*unstructured.Unstructured
	for _, file := range Files {
		filename := filepath.Join(r.Dir, file)
		declared, err := declaredParameters(filename)
		if err != nil {
			return nil, err
		}

		objs, err := r.Client.Process(ctx, filename, params.Intersect(declared))
		if err != nil {
			return nil, err
		}
		objects = append(objects, objs...)
	}
	return objects, nil
}

// declaredParameters reads the parameter names a template definition accepts.
func declaredParameters(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var tpl struct {
		Parameters []struct {
			Name string `json:"name"`
		} `json:"parameters"`
	}
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parsing template %s failed: %w", filename, err)
	}

	names := make([]string, 0, len(tpl.Parameters))
	for _, p := range tpl.Parameters {
		names = append(names, p.Name)
	}
	return names, nil
}
