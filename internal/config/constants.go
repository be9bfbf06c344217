package config

import "os"

// Application constants
const (
	AppName    = "loanprep"
	AppVersion = "1.0.0"

	// DirPerm is used for every directory the pipeline creates
	DirPerm os.FileMode = 0755
	// FilePerm is used for output, manifest and log files
	FilePerm os.FileMode = 0644
)
