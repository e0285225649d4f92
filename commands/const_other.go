//go:build !linux && !darwin && !windows

package commands

const (
	DEFAULT_WORKDIR     = "acc-docs-sync"
	DEFAULT_CREDENTIALS = "credentials.json"
)
