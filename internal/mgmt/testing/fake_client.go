// Package testing provides test doubles for the mgmt package.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// ExecuteCall records a call to ExecuteScript.
type ExecuteCall struct {
	ScriptID int
	Group    string
}

// Poll is one status snapshot served to a report build: the child actions
// returned for the parent-id query and the actions returned for the id query.
type Poll struct {
	Children []mgmt.Action
	Parent   []mgmt.Action
}

// FakeClient simulates the management API.
// Each report build consumes one Poll; the last Poll repeats once exhausted.
type FakeClient struct {
	mu sync.Mutex

	// Configuration
	Servers        map[string][]mgmt.Server
	ListServersErr error
	ExecuteResult  mgmt.Action
	ExecuteErr     error
	Polls          []Poll
	ListActionsErr error

	// Call tracking
	ListServersCalls []string
	ExecuteCalls     []ExecuteCall
	ListActionsCalls []mgmt.ActionFilter

	poll int
}

var _ mgmt.Client = (*FakeClient)(nil)

// NewFakeClient creates a fake that serves the given servers under group
// and dispatches to parentID.
func NewFakeClient(group string, servers []mgmt.Server, parentID int) *FakeClient {
	return &FakeClient{
		Servers:       map[string][]mgmt.Server{group: servers},
		ExecuteResult: mgmt.Action{ID: parentID, Status: "queued"},
	}
}

// AddPoll appends a snapshot where every child has childStatus and the
// parent has parentStatus. Children are created one per server, in order.
func (f *FakeClient) AddPoll(parentID int, servers []mgmt.Server, childStatus, parentStatus string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := Poll{Parent: []mgmt.Action{{ID: parentID, Status: parentStatus}}}
	for i, s := range servers {
		p.Children = append(p.Children, mgmt.Action{
			ID:       parentID + i + 1,
			ParentID: parentID,
			ServerID: s.ID,
			Status:   childStatus,
		})
	}
	f.Polls = append(f.Polls, p)
	return f
}

// ListServers returns the configured servers for group.
func (f *FakeClient) ListServers(ctx context.Context, group string) ([]mgmt.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListServersCalls = append(f.ListServersCalls, group)
	if f.ListServersErr != nil {
		return nil, f.ListServersErr
	}
	return append([]mgmt.Server(nil), f.Servers[group]...), nil
}

// ExecuteScript returns ExecuteResult.
func (f *FakeClient) ExecuteScript(ctx context.Context, scriptID int, group string) (mgmt.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ExecuteCalls = append(f.ExecuteCalls, ExecuteCall{ScriptID: scriptID, Group: group})
	if f.ExecuteErr != nil {
		return mgmt.Action{}, f.ExecuteErr
	}
	return f.ExecuteResult, nil
}

// ListActions serves the current Poll. The id query ends a report build
// and advances to the next Poll.
func (f *FakeClient) ListActions(ctx context.Context, filter mgmt.ActionFilter) ([]mgmt.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListActionsCalls = append(f.ListActionsCalls, filter)
	if f.ListActionsErr != nil {
		return nil, f.ListActionsErr
	}
	if len(f.Polls) == 0 {
		return nil, nil
	}

	p := f.Polls[f.poll]
	if filter.ParentID != 0 {
		return append([]mgmt.Action(nil), p.Children...), nil
	}

	if f.poll < len(f.Polls)-1 {
		f.poll++
	}
	return append([]mgmt.Action(nil), p.Parent...), nil
}

// CallCount returns the total number of API calls made.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListServersCalls) + len(f.ExecuteCalls) + len(f.ListActionsCalls)
}

// PollsServed returns how many id queries (report builds) were answered.
func (f *FakeClient) PollsServed() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.ListActionsCalls {
		if c.ID != 0 {
			n++
		}
	}
	return n
}
