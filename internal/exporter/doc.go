// Package exporter persists a consolidated report: the primary xlsx
// bordereau plus an optional CSV mirror for downstream tooling.
package exporter
