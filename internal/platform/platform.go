package platform

import "os"

// Process abstracts the launch-time state of the host process
type Process interface {
	// Args returns the launch arguments. Index 1, when present, is the target file.
	Args() []string

	// Getwd returns the current working directory
	Getwd() (string, error)
}

// New returns a Process for the running host. args is fixed for the lifetime of
// the process; the working directory is read on every call.
func New(args []string) Process {
	cp := make([]string, len(args))
	copy(cp, args)
	return &osProcess{args: cp}
}

type osProcess struct {
	args []string
}

func (p *osProcess) Args() []string {
	return p.args
}

func (p *osProcess) Getwd() (string, error) {
	return os.Getwd()
}

// Static is a Process with fixed values, used where the launch state is
// already known (tests, one-shot tools).
type Static struct {
	Arguments []string
	WorkDir   string
	WorkErr   error // returned by Getwd instead of WorkDir when set
}

func (s Static) Args() []string {
	return s.Arguments
}

func (s Static) Getwd() (string, error) {
	if s.WorkErr != nil {
		return "", s.WorkErr
	}
	return s.WorkDir, nil
}
