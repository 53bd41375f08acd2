// Package main hosts the agentpack CLI entrypoint and command graph.
//
// The Cobra-based command tree converts decompiled agent bundles into web
// assets (build), prints the parsed animation model (inspect), lists recorded
// runs (history), checks external tools and directories (doctor), and
// scaffolds configuration. Configuration resolution, flag overrides and logger
// setup live in commandContext so subcommands only wire flags to the internal
// packages.
package main
