package quiet

import (
	"os"
	"sync"
)

// Environment variables set in quiet mode. Child pipeline processes inherit
// them from the current process environment.
var quietEnv = [][2]string{
	{"TRANSFORMERS_NO_ADVISORY_WARNINGS", "1"},
	{"MODELSCOPE_LOG_LEVEL", "40"},
	{"PYTHONWARNINGS", "ignore"},
}

var (
	envOnce sync.Once
	envErr  error
)

// ConfigureLogging lowers the verbosity of the model libraries when quiet is
// true and does nothing otherwise. The environment is written once per
// process; later calls have no further effect. The application's own loggers
// are left alone.
func ConfigureLogging(quiet bool) error {
	if !quiet {
		return nil
	}

	envOnce.Do(func() {
		for _, kv := range quietEnv {
			if err := os.Setenv(kv[0], kv[1]); err != nil {
				envErr = err
				return
			}
		}
	})
	return envErr
}

// Environment returns the variables ConfigureLogging applies in quiet mode
// as KEY=VALUE pairs.
func Environment() []string {
	out := make([]string, 0, len(quietEnv))
	for _, kv := range quietEnv {
		out = append(out, kv[0]+"="+kv[1])
	}
	return out
}
