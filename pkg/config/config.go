package config

import (
	"fmt"
	"os/user"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"k8s.io/apimachinery/pkg/api/resource"
)

// PrefixSeparator terminates the resolved developer prefix.
const PrefixSeparator = "-"

// Action is the mutating operation performed by a run.
type Action string

const (
	ActionUpdate      Action = "update"
	ActionDeleteDevel Action = "delete-devel"
)

// Options holds the raw command line input before validation.
type Options struct {
	Update      bool
	DeleteDevel bool
	Official    bool
	All         bool
	DryRun      bool
	Prefix      string
	Start       bool
	Pipeline    string
	Config      string
	Bucket      string
	GCPGSBucket string
	CosaImg     string
	PVCSize     string
	OcCmd       string
}

// Config is the resolved invocation configuration. It is built once at
// startup and never mutated afterwards.
type Config struct {
	Action      Action
	Official    bool
	All         bool
	DryRun      bool
	Prefix      string
	Start       bool
	Pipeline    string
	Config      string
	Bucket      string
	GCPGSBucket string
	CosaImg     string
	PVCSize     string
	OcCmd       string
}

// New validates the given options and returns the resolved configuration.
// The developer prefix must be non-empty and must not already end in the
// separator; the resolved prefix carries a trailing separator. Official
// operations always apply the full resource set.
func New(opts Options) (*Config, error) {
	if opts.Update == opts.DeleteDevel {
		return nil, fmt.Errorf("exactly one of --update or --delete-devel must be specified")
	}

	action := ActionUpdate
	if opts.DeleteDevel {
		action = ActionDeleteDevel
	}

	if opts.Prefix == "" {
		return nil, fmt.Errorf("--prefix can't be empty")
	}
	if strings.HasSuffix(opts.Prefix, PrefixSeparator) {
		return nil, fmt.Errorf("--prefix %q must not end with %q", opts.Prefix, PrefixSeparator)
	}

	if opts.CosaImg != "" {
		if _, err := name.ParseReference(opts.CosaImg); err != nil {
			return nil, fmt.Errorf("invalid --cosa-img pullspec %q: %w", opts.CosaImg, err)
		}
	}

	if opts.PVCSize != "" {
		if _, err := resource.ParseQuantity(opts.PVCSize); err != nil {
			return nil, fmt.Errorf("invalid --pvc-size %q: %w", opts.PVCSize, err)
		}
	}

	ocCmd := opts.OcCmd
	if ocCmd == "" {
		ocCmd = "oc"
	}

	return &Config{
		Action:      action,
		Official:    opts.Official,
		All:         opts.All || opts.Official,
		DryRun:      opts.DryRun,
		Prefix:      opts.Prefix + PrefixSeparator,
		Start:       opts.Start,
		Pipeline:    opts.Pipeline,
		Config:      opts.Config,
		Bucket:      opts.Bucket,
		GCPGSBucket: opts.GCPGSBucket,
		CosaImg:     opts.CosaImg,
		PVCSize:     opts.PVCSize,
		OcCmd:       ocCmd,
	}, nil
}

// DefaultPrefix returns the caller's OS username, the default developer
// prefix for namespaced resources.
func DefaultPrefix() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
