package deps

import "fmt"

// Stage names the step of a from-source build.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageInstall   Stage = "install"
)

// DependencyBuildFailedError reports a dependency that could not be built
// from source. It is fatal to a packaging run.
type DependencyBuildFailedError struct {
	Name  string
	Stage Stage
	Err   error
}

func (e *DependencyBuildFailedError) Error() string {
	return fmt.Sprintf("dependency %s failed at %s: %v", e.Name, e.Stage, e.Err)
}

func (e *DependencyBuildFailedError) Unwrap() error {
	return e.Err
}
