// Package spawn launches the handoff worker detached from the hook process.
// Hooks run under a single-digit-second timeout while LLM inference takes
// seconds to minutes; the only way to reconcile the two is a separate process
// the hook never waits for.
package spawn

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/recallkit/recallkit/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	payloadFileMode = 0o600
	payloadDirMode  = 0o700
)

// Detacher re-executes the current binary with the hidden handoff-bg
// subcommand, carrying state through a payload file rather than live
// references.
type Detacher struct {
	binPath    string
	payloadDir string
}

var _ ports.Detacher = (*Detacher)(nil)

func NewDetacher(binPath, payloadDir string) *Detacher {
	return &Detacher{binPath: binPath, payloadDir: payloadDir}
}

func (d *Detacher) Detach(payload ports.HandoffPayload) error {
	payloadPath, err := d.writePayload(payload)
	if err != nil {
		return err
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(d.binPath, "hook", "handoff-bg", payloadPath)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		_ = os.Remove(payloadPath)
		return fmt.Errorf("start handoff worker: %w", err)
	}

	// Release immediately: the parent must exit within its own budget and
	// never reap the worker.
	return cmd.Process.Release()
}

func (d *Detacher) writePayload(payload ports.HandoffPayload) (string, error) {
	if err := os.MkdirAll(d.payloadDir, payloadDirMode); err != nil {
		return "", fmt.Errorf("create payload directory: %w", err)
	}

	data, err := toml.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode handoff payload: %w", err)
	}

	file, err := os.CreateTemp(d.payloadDir, "handoff-*.toml")
	if err != nil {
		return "", fmt.Errorf("create payload file: %w", err)
	}
	name := file.Name()
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write payload file: %w", err)
	}
	if err := file.Chmod(payloadFileMode); err != nil {
		_ = file.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod payload file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close payload file: %w", err)
	}

	return name, nil
}

// ReadPayload loads a payload file written by Detach. The worker deletes the
// file once it has been read; a re-run of the same payload is never wanted.
func ReadPayload(path string) (ports.HandoffPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ports.HandoffPayload{}, fmt.Errorf("read handoff payload: %w", err)
	}

	var payload ports.HandoffPayload
	if err := toml.Unmarshal(data, &payload); err != nil {
		return ports.HandoffPayload{}, fmt.Errorf("decode handoff payload: %w", err)
	}

	_ = os.Remove(filepath.Clean(path))

	return payload, nil
}
