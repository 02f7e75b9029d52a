package installer

// InstallState accumulates the env vars the wizard steps collect. Steps read
// earlier answers from it to decide whether they apply.
type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}
