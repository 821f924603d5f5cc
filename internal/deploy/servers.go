package deploy

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// ServerSet maps server ID to server for one resolved group.
type ServerSet map[int]mgmt.Server

// Hostname returns the hostname for id, or false if the id is unknown.
func (s ServerSet) Hostname(id int) (string, bool) {
	srv, ok := s[id]
	if !ok {
		return "", false
	}
	return srv.Hostname, true
}

// Hostnames returns all hostnames, sorted case-insensitively.
func (s ServerSet) Hostnames() []string {
	names := make([]string, 0, len(s))
	for _, srv := range s {
		names = append(names, srv.Hostname)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// ResolveServers fetches every server tagged with group. An empty result is
// valid; the report will then hold only the summary record.
func ResolveServers(ctx context.Context, client mgmt.Client, group string) (ServerSet, error) {
	if group == "" {
		return nil, errors.New(errors.ErrConfig,
			"No server group given",
			"Pass the group name with --tag")
	}

	servers, err := client.ListServers(ctx, group)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("Failed to list servers in group '%s'", group))
	}

	set := make(ServerSet, len(servers))
	for _, srv := range servers {
		if prev, dup := set[srv.ID]; dup && prev.Hostname != srv.Hostname {
			return nil, errors.New(errors.ErrData,
				fmt.Sprintf("Server id %d is listed twice (%s and %s)", srv.ID, prev.Hostname, srv.Hostname),
				"The management API returned inconsistent data; try again later.")
		}
		set[srv.ID] = srv
	}
	return set, nil
}

// apiError classifies a management API failure. Responses that could not be
// understood are data errors; everything else is a remote call error.
func apiError(err error, message string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapWithCode(err, errors.ErrAPI, message, "")
	}
	if stderrors.Is(err, mgmt.ErrMalformed) {
		return errors.WrapWithCode(err, errors.ErrData, message,
			"The management API returned data rollout doesn't understand.")
	}
	if mgmt.IsUnauthorized(err) {
		return errors.WrapWithCode(err, errors.ErrAPI, message,
			"Check the API key and secret for this environment (--dev selects the dev set).")
	}
	return errors.WrapWithCode(err, errors.ErrAPI, message,
		"Check the management API is reachable and the URI is right.")
}
