package cluster

import (
	"context"
	"fmt"

	clientcmdv1 "k8s.io/client-go/tools/clientcmd/api/v1"
)

const (
	// OfficialServerURL is the API endpoint of the production cluster.
	OfficialServerURL = "https://api.ocp.fedoraproject.org:6443"
	// OfficialNamespace hosts the shared, unprefixed pipeline resources.
	OfficialNamespace = "fedora-coreos-pipeline"
)

// OfficialTarget reports whether the active login context points at the
// official namespace on the production cluster. The lookup is read-only.
// An ambiguous or incomplete client configuration is an error.
func OfficialTarget(ctx context.Context, client Interface) (bool, error) {
	contextName, err := client.CurrentContext(ctx)
	if err != nil {
		return false, err
	}

	cfg, err := client.ClientConfig(ctx)
	if err != nil {
		return false, err
	}

	var loginContext *clientcmdv1.Context
	for i := range cfg.Contexts {
		if cfg.Contexts[i].Name != contextName {
			continue
		}
		if loginContext != nil {
			return false, fmt.Errorf("multiple context entries named %q in the client configuration", contextName)
		}
		loginContext = &cfg.Contexts[i].Context
	}
	if loginContext == nil {
		return false, fmt.Errorf("context %q not found in the client configuration", contextName)
	}

	var cluster *clientcmdv1.Cluster
	for i := range cfg.Clusters {
		if cfg.Clusters[i].Name != loginContext.Cluster {
			continue
		}
		if cluster != nil {
			return false, fmt.Errorf("multiple cluster entries named %q in the client configuration", loginContext.Cluster)
		}
		cluster = &cfg.Clusters[i].Cluster
	}
	if cluster == nil {
		return false, fmt.Errorf("cluster %q not found in the client configuration", loginContext.Cluster)
	}

	return cluster.Server == OfficialServerURL && loginContext.Namespace == OfficialNamespace, nil
}
