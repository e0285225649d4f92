//go:build !linux && !darwin && !windows

package auth

var browser = []string{"xdg-open"}
