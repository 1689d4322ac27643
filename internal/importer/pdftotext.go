package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// pdfToTextTimeout bounds a single pdftotext invocation.
const pdfToTextTimeout = 2 * time.Minute

// ExtractPDFText runs pdftotext on pdfPath and returns the extracted text.
// toolPath is the pdftotext binary name or path; "" means "pdftotext" on PATH.
func ExtractPDFText(ctx context.Context, toolPath, pdfPath string) (string, error) {
	if strings.TrimSpace(pdfPath) == "" {
		return "", fmt.Errorf("pdfPath required")
	}
	if toolPath == "" {
		toolPath = "pdftotext"
	}
	bin, err := exec.LookPath(toolPath)
	if err != nil {
		return "", fmt.Errorf("pdftotext not found: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, pdfToTextTimeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "hscode_pdftotext_*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "out.txt")

	cmd := exec.CommandContext(callCtx, bin,
		"-enc", "UTF-8",
		"-q",
		pdfPath,
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return "", fmt.Errorf("pdftotext: %w; stderr=%s", err, s)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("read pdftotext output: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}
	return string(b), nil
}
