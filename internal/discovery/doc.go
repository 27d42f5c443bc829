// Package discovery finds the compose projects managed by fleet.
//
// A project is a directory holding a recognized compose definition file. Discovery looks at the
// root directory itself and at its immediate, non-hidden subdirectories, never deeper:
//
//	/srv/stacks              <- project if it holds a compose file itself
//	/srv/stacks/git          <- project
//	/srv/stacks/media        <- project
//	/srv/stacks/.trash       <- ignored, hidden
//	/srv/stacks/media/db     <- ignored, too deep
//
// The compose filenames are checked in priority order ([DefaultComposeFilenames]); the first match
// becomes the project's compose file for the rest of the run.
//
// The inactive marker is an empty sentinel file inside a project directory. Discovery records
// whether it is present; excluding marked projects is up to the filter package.
package discovery
