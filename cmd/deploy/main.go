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
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/coreos/fedora-coreos-pipeline/pkg/config"
)

var VERSION = "1.0.0-dev.0"

const PROJECT = "deploy"

var rootCmd = &cobra.Command{
	Use:           PROJECT,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A command line utility to deploy the Fedora CoreOS pipeline resources to an OpenShift namespace.",
	Long: `Deploy templates the pipeline resources with 'oc process' and applies them
with 'oc create' or 'oc replace'.

Update your prefixed copy of the default pipeline resources:

- deploy --update

Update every resource, pointing the Jenkins jobs at your own pipeline branch:

- deploy --update --all --pipeline https://github.com/jlebon/fedora-coreos-pipeline@feature

Update the shared resources in the official namespace (requires --official):

- deploy --update --official

Delete your prefixed resources:

- deploy --delete-devel
`,
	RunE: runDeployCmd,
}

type deployFlags struct {
	update      bool
	deleteDevel bool
	official    bool
	all         bool
	dryRun      bool
	prefix      string
	start       bool
	pipeline    string
	config      string
	bucket      string
	gcpGSBucket string
	cosaImg     string
	pvcSize     string
	ocCmd       string
}

var (
	deployArgs = deployFlags{}
	logger     = stderrLogger{stderr: os.Stderr}
)

func init() {
	rootCmd.Flags().BoolVar(&deployArgs.update, "update", false,
		"Create or replace the pipeline resources.")
	rootCmd.Flags().BoolVar(&deployArgs.deleteDevel, "delete-devel", false,
		"Delete the developer resources matching --prefix.")
	rootCmd.Flags().BoolVar(&deployArgs.official, "official", false,
		"Operate on the shared, unprefixed resources. Implies --all.")
	rootCmd.Flags().BoolVar(&deployArgs.all, "all", false,
		"Apply every rendered resource, not just the ones tagged as defaults.")
	rootCmd.Flags().BoolVar(&deployArgs.dryRun, "dry-run", false,
		"Only print the intended actions, without mutating the cluster.")
	rootCmd.Flags().StringVar(&deployArgs.prefix, "prefix", config.DefaultPrefix(),
		"Developer prefix for namespaced resources.")
	rootCmd.Flags().BoolVar(&deployArgs.start, "start", false,
		"Start a pipeline build once the update finished.")
	rootCmd.Flags().StringVar(&deployArgs.pipeline, "pipeline", "",
		"Pipeline repo, in the format 'URL[@REF]'.")
	rootCmd.Flags().StringVar(&deployArgs.config, "config", "",
		"Config repo, in the format 'URL[@REF]'.")
	rootCmd.Flags().StringVar(&deployArgs.bucket, "bucket", "",
		"AWS S3 bucket receiving the build artifacts.")
	rootCmd.Flags().StringVar(&deployArgs.gcpGSBucket, "gcp-gs-bucket", "",
		"GCP GS bucket receiving the build artifacts.")
	rootCmd.Flags().StringVar(&deployArgs.cosaImg, "cosa-img", "",
		"Pullspec of the coreos-assembler image to use.")
	rootCmd.Flags().StringVar(&deployArgs.pvcSize, "pvc-size", "",
		"Size of the cache persistent volume claim, e.g. '100Gi'.")
	rootCmd.Flags().StringVar(&deployArgs.ocCmd, "oc-cmd", "oc",
		"Path to the oc binary.")

	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Println(`✗`, err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
