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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/coreos/fedora-coreos-pipeline/pkg/cluster"
	"github.com/coreos/fedora-coreos-pipeline/pkg/config"
	"github.com/coreos/fedora-coreos-pipeline/pkg/deploy"
	"github.com/coreos/fedora-coreos-pipeline/pkg/gitref"
	"github.com/coreos/fedora-coreos-pipeline/pkg/template"
)

// Injection points for the tests; production runs shell out to oc and git.
var (
	newClusterClient = func(cfg *config.Config) cluster.Interface {
		return cluster.NewClient(cluster.NewOcExecutor(cfg.OcCmd, nil))
	}
	newGitResolver = func() gitref.Resolver {
		return gitref.NewExecResolver("git")
	}
	manifestsDir = "."
)

func runDeployCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.New(config.Options{
		Update:      deployArgs.update,
		DeleteDevel: deployArgs.deleteDevel,
		Official:    deployArgs.official,
		All:         deployArgs.all,
		DryRun:      deployArgs.dryRun,
		Prefix:      deployArgs.prefix,
		Start:       deployArgs.start,
		Pipeline:    deployArgs.pipeline,
		Config:      deployArgs.config,
		Bucket:      deployArgs.bucket,
		GCPGSBucket: deployArgs.gcpGSBucket,
		CosaImg:     deployArgs.cosaImg,
		PVCSize:     deployArgs.pvcSize,
		OcCmd:       deployArgs.ocCmd,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := newClusterClient(cfg)

	official, err := cluster.OfficialTarget(ctx, client)
	if err != nil {
		return err
	}
	if official && !cfg.Official {
		return fmt.Errorf("refusing to operate on the official namespace %s without --official",
			cluster.OfficialNamespace)
	}

	params, err := template.BuildParameters(ctx, cfg, newGitResolver())
	if err != nil {
		return err
	}
	logger.Println("parameters:")
	params.Print(cmd.OutOrStdout())

	renderer := &template.Renderer{Client: client, Dir: manifestsDir}
	objects, err := renderer.Render(ctx, params)
	if err != nil {
		return err
	}
	logger.Println(fmt.Sprintf("rendered %v resource(s)", len(objects)))

	deployer := &deploy.Deployer{
		Client: client,
		Config: cfg,
		IOStreams: genericclioptions.IOStreams{
			In:     cmd.InOrStdin(),
			Out:    cmd.OutOrStdout(),
			ErrOut: cmd.ErrOrStderr(),
		},
	}

	switch cfg.Action {
	case config.ActionUpdate:
		if _, err := deployer.Update(ctx, objects); err != nil {
			return err
		}
		if cfg.Start {
			if cfg.DryRun {
				logger.Println("dry run: not starting a pipeline build")
			} else if err := deployer.StartBuild(ctx); err != nil {
				return err
			}
		}
		logger.Println(`✓`, "update finished")
	case config.ActionDeleteDevel:
		if _, err := deployer.DeleteDevel(ctx, objects); err != nil {
			return err
		}
		logger.Println(`✓`, "delete finished")
	}

	return nil
}
