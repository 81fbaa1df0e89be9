// Package prompt provides interactive terminal prompts for CLI commands.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err represents a user abort.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// Confirm prompts the user for yes/no confirmation.
// Returns true if the user confirms, false otherwise.
// Returns ErrAborted if the user presses Ctrl+C.
func Confirm(label string, defaultYes bool) (bool, error) {
	defaultStr := "y/N"
	if defaultYes {
		defaultStr = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, defaultStr),
		IsConfirm: true,
	}

	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrAborted
		}
		// promptui returns ErrAbort for a "n" response
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		// Empty input uses the default
		if result == "" {
			return defaultYes, nil
		}
		return false, err
	}

	result = strings.ToLower(result)
	return result == "y" || result == "yes", nil
}
