// Package run describes what a single analysis run consumed. Reports with equal
// fingerprints and a non-empty input hash analyzed the same workbook with the same settings.
package run

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"finprobe/domain/core"
)

// Manifest records what a run analyzed and with which settings
type Manifest struct {
	RunID        core.RunID `json:"run_id"`
	InputPath    string     `json:"input_path"`
	InputHash    string     `json:"input_hash,omitempty"` // sha256 of the workbook bytes
	SettingsHash string     `json:"settings_hash"`
	StagePlan    []string   `json:"stage_plan"`
	CodeVersion  string     `json:"code_version"`
	Fingerprint  string     `json:"fingerprint"` // hash of everything above except the run ID and path
}

// NewManifest creates a manifest and computes its fingerprint
func NewManifest(runID core.RunID, inputPath, inputHash, settingsHash string, stagePlan []string, codeVersion string) Manifest {
	return Manifest{
		RunID:        runID,
		InputPath:    inputPath,
		InputHash:    inputHash,
		SettingsHash: settingsHash,
		StagePlan:    append([]string(nil), stagePlan...),
		CodeVersion:  codeVersion,
		Fingerprint:  computeFingerprint(inputHash, settingsHash, stagePlan, codeVersion),
	}
}

// computeFingerprint generates deterministic hash from all determinism parameters
func computeFingerprint(inputHash, settingsHash string, stagePlan []string, codeVersion string) string {
	data := fmt.Sprintf("input:%s|settings:%s|stages:%s|code:%s",
		inputHash, settingsHash, strings.Join(stagePlan, ","), codeVersion)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Validate checks if the manifest is complete
func (m Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.SettingsHash == "" {
		return fmt.Errorf("run manifest: settings_hash cannot be empty")
	}
	if m.CodeVersion == "" {
		return fmt.Errorf("run manifest: code_version cannot be empty")
	}
	if len(m.StagePlan) == 0 {
		return fmt.Errorf("run manifest: stage_plan cannot be empty")
	}
	return nil
}

// HashFile returns the hex sha256 of the file at path
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
