package commands

const (
	_etc = `C:\ProgramData\acc-docs-sync`
	_var = `C:\ProgramData\acc-docs-sync\var`

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + `\.google\credentials.json`
)
