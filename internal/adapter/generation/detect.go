package generation

import (
	"os/exec"
	"strings"
)

// Models tried in capability order. The large model is only worth
// running with a GPU behind it.
const (
	ModelGPU      = "gemma3:27b"
	ModelCPU      = "gemma3:12b"
	ModelFallback = "gemma2:2b"
)

// ResolveModel turns the "auto" placeholder into a concrete model name
// by probing for an NVIDIA GPU. Explicit names pass through untouched.
// Called once at startup; the result is carried in configuration, never
// re-probed.
func ResolveModel(configured string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	if hasNvidiaGPU() {
		return ModelGPU
	}
	return ModelCPU
}

func hasNvidiaGPU() bool {
	out, err := exec.Command("nvidia-smi").Output()
	if err != nil {
		return false
	}
	// nvidia-smi prints per-device memory in MiB when a GPU is present.
	return strings.Contains(string(out), "MiB")
}
