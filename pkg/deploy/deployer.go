/*
Copyright 2023 The Fedora CoreOS Pipeline Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package deploy

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/coreos/fedora-coreos-pipeline/pkg/cluster"
	"github.com/coreos/fedora-coreos-pipeline/pkg/config"
	"github.com/coreos/fedora-coreos-pipeline/pkg/objectutil"
)

// DefaultTagAnnotation marks resources included in selective (non --all)
// updates. Only the literal value "true" counts.
const DefaultTagAnnotation = "coreos.com/deploy-default"

// PipelineBuildConfig is the build config started with --start.
const PipelineBuildConfig = "fedora-coreos-pipeline"

// nonUpdatableKinds can't be replaced in place once created.
var nonUpdatableKinds = map[string]bool{
	"PersistentVolumeClaim": true,
}

// Deployer applies or deletes the rendered pipeline resources, one blocking
// cluster CLI invocation at a time.
type Deployer struct {
	Client    cluster.Interface
	Config    *config.Config
	IOStreams genericclioptions.IOStreams
}

// Update creates or replaces each eligible object in order. Resources
// lacking the default tag are skipped unless the full set was requested.
// Existing objects of a non-updatable kind are left untouched. The first
// failing mutation aborts the run; objects already applied stand.
func (d *Deployer) Update(ctx context.Context, objects []*unstructured.Unstructured) (*cluster.ChangeSet, error) {
	changeSet := cluster.NewChangeSet()
	for _, object := range objects {
		if !d.Config.All && !IsDefaultResource(object) {
			continue
		}

		subject := objectutil.FmtUnstructured(object)
		exists := d.Client.Exists(ctx, object.GetKind(), object.GetName())

		if exists && nonUpdatableKinds[object.GetKind()] {
			fmt.Fprintf(d.IOStreams.Out, "%s exists, skipping (can't be updated in place)\n", subject)
			changeSet.Add(cluster.ChangeSetEntry{Subject: subject, Action: cluster.SkippedAction})
			continue
		}

		action := cluster.CreatedAction
		if exists {
			action = cluster.ReplacedAction
		}

		if d.Config.DryRun {
			entry := cluster.ChangeSetEntry{Subject: subject, Action: action, DryRun: true}
			fmt.Fprintln(d.IOStreams.Out, entry.String())
			changeSet.Add(entry)
			continue
		}

		var output string
		var err error
		if exists {
			output, err = d.Client.Replace(ctx, object)
		} else {
			output, err = d.Client.Create(ctx, object)
		}
		if err != nil {
			return changeSet, fmt.Errorf("applying %s failed: %w", subject, err)
		}
		fmt.Fprintln(d.IOStreams.Out, output)
		changeSet.Add(cluster.ChangeSetEntry{Subject: subject, Action: action})
	}
	return changeSet, nil
}

// DeleteDevel deletes the objects whose name carries the caller's developer
// prefix. Objects without the prefix are silently left untouched; this is
// the only guard keeping shared resources from deletion.
func (d *Deployer) DeleteDevel(ctx context.Context, objects []*unstructured.Unstructured) (*cluster.ChangeSet, error) {
	changeSet := cluster.NewChangeSet()
	for _, object := range objects {
		if !strings.HasPrefix(object.GetName(), d.Config.Prefix) {
			continue
		}

		subject := objectutil.FmtUnstructured(object)
		if d.Config.DryRun {
			entry := cluster.ChangeSetEntry{Subject: subject, Action: cluster.DeletedAction, DryRun: true}
			fmt.Fprintln(d.IOStreams.Out, entry.String())
			changeSet.Add(entry)
			continue
		}

		output, err := d.Client.Delete(ctx, object)
		if err != nil {
			return changeSet, fmt.Errorf("deleting %s failed: %w", subject, err)
		}
		fmt.Fprintln(d.IOStreams.Out, output)
		changeSet.Add(cluster.ChangeSetEntry{Subject: subject, Action: cluster.DeletedAction})
	}
	return changeSet, nil
}

// StartBuild triggers a pipeline build after a successful update.
func (d *Deployer) StartBuild(ctx context.Context) error {
	name := PipelineBuildConfig
	if !d.Config.Official {
		name = d.Config.Prefix + PipelineBuildConfig
	}

	output, err := d.Client.StartBuild(ctx, name)
	if err != nil {
		return fmt.Errorf("starting a build of %s failed: %w", name, err)
	}
	fmt.Fprintln(d.IOStreams.Out, output)
	return nil
}

// IsDefaultResource reports whether the object carries the default tag.
func IsDefaultResource(object *unstructured.Unstructured) bool {
	return object.GetAnnotations()[DefaultTagAnnotation] == "true"
}
