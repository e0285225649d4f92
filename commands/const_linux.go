package commands

const (
	_etc = "/usr/local/etc/acc-docs-sync"
	_var = "/usr/local/var/acc-docs-sync"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
