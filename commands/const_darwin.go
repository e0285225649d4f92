package commands

const (
	_etc = "/usr/local/etc/com.github.wwp-bim/acc-docs-sync"
	_var = "/usr/local/var/com.github.wwp-bim/acc-docs-sync"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
