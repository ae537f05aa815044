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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattn/go-shellwords"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	clientcmdv1 "k8s.io/client-go/tools/clientcmd/api/v1"

	"github.com/coreos/fedora-coreos-pipeline/pkg/cluster"
	"github.com/coreos/fedora-coreos-pipeline/pkg/config"
	"github.com/coreos/fedora-coreos-pipeline/pkg/gitref"
)

func executeCommand(cmd string) (string, error) {
	defer resetCmdArgs()
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)

	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	logger.stderr = rootCmd.ErrOrStderr()

	_, err = rootCmd.ExecuteC()
	result := buf.String()

	return result, err
}

func resetCmdArgs() {
	deployArgs = deployFlags{
		prefix: config.DefaultPrefix(),
		ocCmd:  "oc",
	}
}

type TestFile struct {
	Name string
	Body string
}

func makeManifestsDir(t *testing.T, files []TestFile) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "manifests"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, "manifests", file.Name), []byte(file.Body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

var testTemplates = []TestFile{
	{
		Name: "jenkins-s2i.yaml",
		Body: `---
apiVersion: template.openshift.io/v1
kind: Template
metadata:
  name: jenkins-s2i
parameters:
  - name: DEVELOPER_PREFIX
  - name: JENKINS_S2I_URL
  - name: JENKINS_S2I_REF
objects: []
`,
	},
	{
		Name: "pipeline.yaml",
		Body: `---
apiVersion: template.openshift.io/v1
kind: Template
metadata:
  name: pipeline
parameters:
  - name: DEVELOPER_PREFIX
  - name: JENKINS_JOBS_URL
  - name: JENKINS_JOBS_REF
  - name: FCOS_CONFIG_URL
  - name: FCOS_CONFIG_REF
  - name: S3_BUCKET
  - name: GCP_GS_BUCKET
  - name: COSA_IMG
  - name: PVC_SIZE
objects: []
`,
	},
}

type fakeGitResolver struct {
	branch string
	calls  int
}

func (f *fakeGitResolver) DefaultBranch(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.branch == "" {
		return "", fmt.Errorf("no default branch for %s", url)
	}
	return f.branch, nil
}

// fakeCluster substitutes the oc shell-outs during the command tests.
type fakeCluster struct {
	contextName  string
	clientConfig *clientcmdv1.Config
	rendered     map[string][]*unstructured.Unstructured
	existing     map[string]bool
	processed    map[string]map[string]string
	mutations    []string
	builds       []string
}

func (f *fakeCluster) CurrentContext(ctx context.Context) (string, error) {
	return f.contextName, nil
}

func (f *fakeCluster) ClientConfig(ctx context.Context) (*clientcmdv1.Config, error) {
	return f.clientConfig, nil
}

func (f *fakeCluster) Process(ctx context.Context, filename string, params map[string]string) ([]*unstructured.Unstructured, error) {
	if f.processed == nil {
		f.processed = map[string]map[string]string{}
	}
	base := filepath.Base(filename)
	f.processed[base] = params
	return f.rendered[base], nil
}

func (f *fakeCluster) Exists(ctx context.Context, kind, name string) bool {
	return f.existing[kind+"/"+name]
}

func (f *fakeCluster) mutate(verb string, object *unstructured.Unstructured) (string, error) {
	key := fmt.Sprintf("%s %s/%s", verb, object.GetKind(), object.GetName())
	f.mutations = append(f.mutations, key)
	return key, nil
}

func (f *fakeCluster) Create(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return f.mutate("create", object)
}

func (f *fakeCluster) Replace(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return f.mutate("replace", object)
}

func (f *fakeCluster) Delete(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return f.mutate("delete", object)
}

func (f *fakeCluster) StartBuild(ctx context.Context, name string) (string, error) {
	f.builds = append(f.builds, name)
	return fmt.Sprintf("build.build.openshift.io/%s-1 started", name), nil
}

func devClientConfig() *clientcmdv1.Config {
	return &clientcmdv1.Config{
		Contexts: []clientcmdv1.NamedContext{{
			Name:    "devel",
			Context: clientcmdv1.Context{Cluster: "local", Namespace: "alice-sandbox"},
		}},
		Clusters: []clientcmdv1.NamedCluster{{
			Name:    "local",
			Cluster: clientcmdv1.Cluster{Server: "https://127.0.0.1:6443"},
		}},
	}
}

func officialClientConfig() *clientcmdv1.Config {
	return &clientcmdv1.Config{
		Contexts: []clientcmdv1.NamedContext{{
			Name:    "prod",
			Context: clientcmdv1.Context{Cluster: "ocp", Namespace: cluster.OfficialNamespace},
		}},
		Clusters: []clientcmdv1.NamedCluster{{
			Name:    "ocp",
			Cluster: clientcmdv1.Cluster{Server: cluster.OfficialServerURL},
		}},
	}
}

// installFakes points the command at a fake cluster and git resolver and
// restores the real ones when the test finishes.
func installFakes(t *testing.T, fake *fakeCluster, resolver gitref.Resolver, dir string) {
	t.Helper()

	prevClient := newClusterClient
	prevResolver := newGitResolver
	prevDir := manifestsDir

	newClusterClient = func(cfg *config.Config) cluster.Interface { return fake }
	newGitResolver = func() gitref.Resolver { return resolver }
	manifestsDir = dir

	t.Cleanup(func() {
		newClusterClient = prevClient
		newGitResolver = prevResolver
		manifestsDir = prevDir
	})
}

func namedObject(kind, name string, defaultTag bool) *unstructured.Unstructured {
	object := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       kind,
		"metadata":   map[string]interface{}{"name": name},
	}}
	if defaultTag {
		object.SetAnnotations(map[string]string{"coreos.com/deploy-default": "true"})
	}
	return object
}
