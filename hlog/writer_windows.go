//go:build windows
// +build windows

package hlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/windows/svc"
)

func debugInit(msg string) {
	fmt.Fprintf(os.Stderr, "PinturaLink#Init: %s\n", msg)
}

func IsTerminal() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
	if isService {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func getLogDir() string {
	isService, _ := svc.IsWindowsService()
	if isService {
		return filepath.Join(filepath.VolumeName(os.Getenv("SystemDrive")), "ProgramData", "PinturaLink", "logs")
	}

	appData := os.Getenv("LOCALAPPDATA")
	if appData == "" {
		appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
	}
	return filepath.Join(appData, "PinturaLink", "logs")
}
