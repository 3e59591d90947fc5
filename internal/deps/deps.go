package deps

import (
	"os/exec"
	"slices"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

var lookPath = exec.LookPath

// output runs a command and returns its combined output.
var output = func(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

func check(binary string, versionArgs ...string) Status {
	path, err := lookPath(binary)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}

	if out, err := output(path, versionArgs...); err == nil {
		status.Version = firstLine(out)
	}
	return status
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// CheckTesseract checks the tesseract CLI, which ships the traineddata the
// recognizer loads.
func CheckTesseract() Status {
	return check("tesseract", "--version")
}

// CheckNotifySend checks the binary desktop notifications shell out to.
func CheckNotifySend() Status {
	return check("notify-send", "--version")
}

// TesseractLanguages lists the installed traineddata codes.
func TesseractLanguages() ([]string, error) {
	path, err := lookPath("tesseract")
	if err != nil {
		return nil, err
	}
	out, err := output(path, "--list-langs")
	if err != nil {
		return nil, err
	}
	return parseLanguages(out), nil
}

// parseLanguages reads `tesseract --list-langs` output, skipping its header.
func parseLanguages(out string) []string {
	var langs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

// MissingLanguages returns the codes in want that are not installed.
// A "+"-joined code such as "jpn+eng" is checked part by part.
func MissingLanguages(want string, installed []string) []string {
	var missing []string
	for _, code := range strings.Split(want, "+") {
		code = strings.TrimSpace(code)
		if code != "" && !slices.Contains(installed, code) {
			missing = append(missing, code)
		}
	}
	return missing
}
