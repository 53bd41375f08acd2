// Package preflight provides readiness checks for the filesystem paths and
// external tools agentpack depends on.
//
// The doctor command runs RunAll and renders each Result; the build command
// runs the same checks first so a conversion never starts against an
// unreadable bundle or an unwritable output directory.
package preflight
