package sentence

import _ "embed"

// runnerScript is executed by the process backend with "python -c". It
// builds the ModelScope pipeline and answers newline-delimited JSON
// requests on stdin, writing one JSON line per request to stdout.
//
//go:embed scripts/pipeline_runner.py
var runnerScript string
