package ocr

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Dependency names an external program the OCR path needs.
type Dependency int

const (
	DependencyUnknown Dependency = iota
	DependencyPoppler
	DependencyTesseract
)

func (d Dependency) String() string {
	switch d {
	case DependencyPoppler:
		return "poppler"
	case DependencyTesseract:
		return "tesseract"
	default:
		return "unknown"
	}
}

// MissingDependencyError reports that a required program could not be found.
type MissingDependencyError struct {
	Dependency Dependency
	Err        error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Dependency, e.Err)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

type signature struct {
	dep      Dependency
	keywords []string
}

// Matched in order. The bare "not found" entry comes last so a message that
// names tesseract is not attributed to poppler.
var signatures = []signature{
	{DependencyPoppler, []string{"poppler", "pdftoppm"}},
	{DependencyTesseract, []string{"tesseract"}},
	{DependencyPoppler, []string{"not found"}},
}

// Classify maps a rasterization or OCR failure to the missing dependency it
// indicates, or DependencyUnknown.
func Classify(err error) Dependency {
	if err == nil {
		return DependencyUnknown
	}
	var missing *MissingDependencyError
	if errors.As(err, &missing) {
		return missing.Dependency
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range signatures {
		for _, kw := range sig.keywords {
			if strings.Contains(msg, kw) {
				return sig.dep
			}
		}
	}
	return DependencyUnknown
}

const (
	popplerHint = "[ERROR: OCR FAILED]\n" +
		"System is missing 'Poppler'.\n" +
		"Windows: Download poppler, extract, and add 'bin' folder to System PATH.\n" +
		"Mac: brew install poppler\n" +
		"Linux: sudo apt install poppler-utils"
	tesseractHint = "[ERROR: OCR FAILED]\n" +
		"System is missing 'Tesseract'.\n" +
		"Windows: Download Tesseract installer and install.\n" +
		"Mac: brew install tesseract\n" +
		"Linux: sudo apt install tesseract-ocr"
)

// Remediation renders the operator-facing note for a failed OCR attempt.
func Remediation(err error) string {
	switch Classify(err) {
	case DependencyPoppler:
		return popplerHint
	case DependencyTesseract:
		return tesseractHint
	default:
		return fmt.Sprintf("[OCR Error]: %v", err)
	}
}

// CheckBinaries looks up each binary on PATH and returns one MissingDependencyError
// per program that is absent.
func CheckBinaries(bins map[Dependency]string) []error {
	var missing []error
	for _, dep := range []Dependency{DependencyPoppler, DependencyTesseract} {
		bin, ok := bins[dep]
		if !ok || bin == "" {
			continue
		}
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, &MissingDependencyError{Dependency: dep, Err: err})
		}
	}
	return missing
}
