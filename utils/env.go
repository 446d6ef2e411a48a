package utils

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env from the working directory into the process
// environment. Variables already set are left alone. It reports whether a
// file was loaded; a missing file is not an error.
func LoadEnv(filenames ...string) (bool, error) {
	err := godotenv.Load(filenames...)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
