package fsutil

import (
	"errors"
	"github.com/otiai10/copy"
	"os"
	"path/filepath"
	"print-vault/crypto"
	"syscall"
)

var (
	ErrDestinationExists  = errors.New("destination already exists")
	ErrDestinationDiffers = errors.New("not overwriting existing (different) file")
)

type ComparisonResult int

const (
	Indeterminate ComparisonResult = iota
	DestinationDoesNotExist
	Same
	Different
)

// MoveFile moves source to destination, creating parent folders. An identical file already at
// the destination is treated as a completed move and the source is removed.
func MoveFile(source, destination string) error {
	comparisonResult, err := compareDestination(source, destination)

	if err != nil {
		return err
	}

	switch comparisonResult {
	case Same:
		return os.Remove(source)
	case Different:
		return ErrDestinationDiffers
	}

	err = os.MkdirAll(filepath.Dir(destination), 0750)

	if err != nil {
		return err
	}

	return move(source, destination)
}

// MoveDir moves a whole folder. The destination must not exist.
func MoveDir(source, destination string) error {
	if Exists(destination) {
		return ErrDestinationExists
	}

	err := os.MkdirAll(filepath.Dir(destination), 0750)

	if err != nil {
		return err
	}

	return move(source, destination)
}

func move(source, destination string) error {
	err := os.Rename(source, destination)

	if err == nil {
		return nil
	}

	// Rename cannot cross filesystems
	var linkErr *os.LinkError

	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	err = copy.Copy(source, destination)

	if err != nil {
		return err
	}

	return os.RemoveAll(source)
}

func compareDestination(source, destination string) (ComparisonResult, error) {
	destinationInfo, err := os.Stat(destination)

	if os.IsNotExist(err) {
		return DestinationDoesNotExist, nil
	}

	if err != nil {
		return Indeterminate, err
	}

	sourceInfo, err := os.Stat(source)

	if err != nil {
		return Indeterminate, err
	}

	if destinationInfo.IsDir() || sourceInfo.Size() != destinationInfo.Size() {
		return Different, nil
	}

	sourceHash, err := crypto.HashFile(source)

	if err != nil {
		return Indeterminate, err
	}

	destinationHash, err := crypto.HashFile(destination)

	if err != nil {
		return Indeterminate, err
	}

	if sourceHash == destinationHash {
		return Same, nil
	}

	return Different, nil
}
