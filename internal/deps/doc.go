// Package deps checks the external binaries agentpack shells out to.
package deps
