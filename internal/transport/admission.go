package transport

import (
	"errors"
	"strings"
)

var ErrUnsupportedFile = errors.New("please upload a .json file")

const admittedExtension = ".json"

// AdmitFile accepts only file names ending in ".json". The check is on the
// literal suffix; contents are not inspected.
func AdmitFile(name string) error {
	if !strings.HasSuffix(name, admittedExtension) {
		return ErrUnsupportedFile
	}
	return nil
}
