package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv loads the files named by the comma-separated ENV_FILE, or .env
// when ENV_FILE is unset. A missing default .env is not an error. Variables
// already set in the process environment win over file values.
func loadDotEnv() error {
	files := []string{".env"}
	explicit := false
	if v := os.Getenv("ENV_FILE"); v != "" {
		files = strings.Split(v, ",")
		explicit = true
	}

	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}

	if !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", strings.Join(files, ","), err)
}
