// Package cli implements the rollout command-line interface.
//
// The root command is the deployment itself. It reads --script and --tag,
// checks them before touching the config or the network, then hands off to
// deployCommand, which loads the config, builds the management API client
// and the webhook notifier, and runs deploy.Run.
//
// # Command Structure
//
//	rollout --script <id> --tag <group>   - Dispatch and watch a deployment
//	rollout init                          - Create .rollout.yaml
//	rollout version                       - Print version information
//	rollout completion <shell>            - Shell completion script
//
// # Output
//
// Human output goes through internal/ui: a header, stage lines, one report
// table per change, and a closing summary. With --json every report change
// is one JSONEnvelope line and the last line carries the result.
//
// # Exit Codes
//
// Execute maps the returned error through errors.ExitCode: 0 for succeeded
// or canceled, 2 for a failed deployment, 130 when interrupted, and 1 for
// anything else.
package cli
