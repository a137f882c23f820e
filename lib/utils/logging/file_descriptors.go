package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"playsync/lib/env"
)

var (
	stdoutWriter io.Writer = os.Stdout
	stderrWriter io.Writer = os.Stderr
)

func init() {
	if env.StdoutPath != "" {
		if err := os.MkdirAll(filepath.Dir(env.StdoutPath), 0755); err != nil {
			panic(fmt.Errorf("failed to create stdout directory: %v", err))
		}

		file, err := os.OpenFile(env.StdoutPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open stdout file: %v", err))
		}
		stdoutWriter = io.MultiWriter(os.Stdout, file)
	}

	if env.StderrPath != "" {
		if err := os.MkdirAll(filepath.Dir(env.StderrPath), 0755); err != nil {
			panic(fmt.Errorf("failed to create stderr directory: %v", err))
		}

		file, err := os.OpenFile(env.StderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open stderr file: %v", err))
		}
		stderrWriter = io.MultiWriter(os.Stderr, file)
	}
}
