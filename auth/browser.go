package auth

import (
	"fmt"

	"golang.org/x/sys/execabs"
)

// OpenBrowser opens a URL with the platform's default browser. It does not wait
// for the opener to exit.
func OpenBrowser(url string) error {
	args := append(append([]string{}, browser[1:]...), url)
	command := execabs.Command(browser[0], args...)

	if err := command.Start(); err != nil {
		return fmt.Errorf("%v (%v)", browser[0], err)
	}

	go command.Wait()

	return nil
}
