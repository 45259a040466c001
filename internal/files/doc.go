// Package files locates source workbooks on disk and prepares the output
// target for a consolidation run.
package files
