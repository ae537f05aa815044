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

package cluster

import "fmt"

// Action represents the action type performed on a cluster object.
type Action string

const (
	CreatedAction  Action = "created"
	ReplacedAction Action = "replaced"
	SkippedAction  Action = "skipped"
	DeletedAction  Action = "deleted"
)

// ChangeSet holds the result of one deploy run over an object collection.
type ChangeSet struct {
	Entries []ChangeSetEntry
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{Entries: []ChangeSetEntry{}}
}

func (c *ChangeSet) Add(e ChangeSetEntry) {
	c.Entries = append(c.Entries, e)
}

// ChangeSetEntry defines the result of an action performed on an object.
type ChangeSetEntry struct {
	// Subject represents the Object ID in the format 'kind/namespace/name'.
	Subject string
	// Action represents the action type taken for this object.
	Action Action
	// DryRun marks the action as intended but not executed.
	DryRun bool
}

func (e ChangeSetEntry) String() string {
	if e.DryRun {
		return fmt.Sprintf("%s %s (dry run)", e.Subject, e.Action)
	}
	return fmt.Sprintf("%s %s", e.Subject, e.Action)
}
