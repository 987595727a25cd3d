// Package quiet controls process-wide diagnostic output around model loading
// and inference.
//
// ConfigureLogging is a one-shot initialization: when quiet is true it sets
// the environment variables read by the Python model ecosystem
// (TRANSFORMERS_NO_ADVISORY_WARNINGS, MODELSCOPE_LOG_LEVEL, PYTHONWARNINGS),
// which child pipeline processes inherit. It runs at most once per process
// and is never undone. The application's own loggers keep their level. It is not safe to race with other code reading or writing the
// same environment variables.
//
// Suppress is a scoped guard that points os.Stdout and os.Stderr at the null
// device until the returned release function runs:
//
//	release, err := quiet.Suppress(cfg.Quiet)
//	if err != nil {
//		return err
//	}
//	defer release()
//
// Guards nest: streams are swapped by the first acquisition and restored by
// the last release. Only writers that look up os.Stdout/os.Stderr at write
// time are affected; loggers that captured the streams earlier keep writing.
package quiet
