package cluster

import (
	"context"
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	clientcmdv1 "k8s.io/client-go/tools/clientcmd/api/v1"
	"sigs.k8s.io/yaml"
)

// Interface abstracts the cluster CLI operations used by the deploy tool.
type Interface interface {
	// CurrentContext returns the name of the active login context.
	CurrentContext(ctx context.Context) (string, error)
	// ClientConfig returns the full client configuration.
	ClientConfig(ctx context.Context) (*clientcmdv1.Config, error)
	// Process renders the given template with the given parameters.
	Process(ctx context.Context, filename string, params map[string]string) ([]*unstructured.Unstructured, error)
	// Exists reports whether the named object is present on the cluster.
	Exists(ctx context.Context, kind, name string) bool
	// Create submits a new object.
	Create(ctx context.Context, object *unstructured.Unstructured) (string, error)
	// Replace overwrites an existing object.
	Replace(ctx context.Context, object *unstructured.Unstructured) (string, error)
	// Delete removes an object.
	Delete(ctx context.Context, object *unstructured.Unstructured) (string, error)
	// StartBuild triggers a new build of the named build config.
	StartBuild(ctx context.Context, name string) (string, error)
}

// Client implements Interface on top of an Executor.
type Client struct {
	executor Executor
}

func NewClient(executor Executor) *Client {
	return &Client{executor: executor}
}

func (c *Client) CurrentContext(ctx context.Context) (string, error) {
	return c.executor.Get(ctx, "config", "current-context")
}

func (c *Client) ClientConfig(ctx context.Context) (*clientcmdv1.Config, error) {
	output, err := c.executor.Get(ctx, "config", "view", "--output=json")
	if err != nil {
		return nil, err
	}

	cfg := &clientcmdv1.Config{}
	if err := yaml.Unmarshal([]byte(output), cfg); err != nil {
		return nil, fmt.Errorf("parsing client configuration failed: %w", err)
	}
	return cfg, nil
}

func (c *Client) Process(ctx context.Context, filename string, params map[string]string) ([]*unstructured.Unstructured, error) {
	args := []string{"process", "--filename", filename}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--param", fmt.Sprintf("%s=%s", k, params[k]))
	}

	output, err := c.executor.Get(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("processing %s failed: %w", filename, err)
	}

	var list struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := yaml.Unmarshal([]byte(output), &list); err != nil {
		return nil, fmt.Errorf("parsing the output of processing %s failed: %w", filename, err)
	}

	objects := make([]*unstructured.Unstructured, 0, len(list.Items))
	for _, item := range list.Items {
		objects = append(objects, &unstructured.Unstructured{Object: item})
	}
	return objects, nil
}

// Exists reports whether a point lookup of the object succeeds. Any lookup
// failure, transient ones included, counts as absence; a broken connection
// can therefore turn a replace into a doomed create.
func (c *Client) Exists(ctx context.Context, kind, name string) bool {
	return c.executor.Exec(ctx, "get", kind, name) == nil
}

func (c *Client) Create(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return c.pipeObject(ctx, object, "create")
}

func (c *Client) Replace(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return c.pipeObject(ctx, object, "replace")
}

func (c *Client) Delete(ctx context.Context, object *unstructured.Unstructured) (string, error) {
	return c.pipeObject(ctx, object, "delete")
}

func (c *Client) StartBuild(ctx context.Context, name string) (string, error) {
	return c.executor.Get(ctx, "start-build", name)
}

func (c *Client) pipeObject(ctx context.Context, object *unstructured.Unstructured, verb string) (string, error) {
	data, err := object.MarshalJSON()
	if err != nil {
		return "", err
	}
	return c.executor.Pipe(ctx, string(data), verb, "--filename", "-")
}
