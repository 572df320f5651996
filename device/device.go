// Package device assembles kernel matrices on an OCCA device. Only dense
// systems with a global length parameter and Euclidean distance are
// offloaded.
package device

import (
	"encoding/hex"
	"fmt"

	"github.com/notargets/gocca"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// Backends are tried in order by CreateDevice
var Backends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice opens the first available backend, preferring parallel ones
func CreateDevice() (*gocca.OCCADevice, error) {
	var lastErr error
	for _, props := range Backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no OCCA backend could be created: %w", lastErr)
}

// Runner compiles and caches kernels for one device
type Runner struct {
	Device  *gocca.OCCADevice
	Kernels map[string]*gocca.OCCAKernel
	logger  *zap.Logger
}

func NewRunner(device *gocca.OCCADevice, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Device:  device,
		Kernels: make(map[string]*gocca.OCCAKernel),
		logger:  logger.Named("device").With(zap.String("mode", device.Mode())),
	}
}

// kernelName derives a stable kernel name from its body, so identical
// sources share one compiled kernel.
func kernelName(prefix, body string) string {
	sum := blake3.Sum256([]byte(body))
	return prefix + "_" + hex.EncodeToString(sum[:6])
}

// BuildKernel compiles source, whose entry point is name, unless a kernel
// of that name was built already.
func (r *Runner) BuildKernel(source, name string) (*gocca.OCCAKernel, error) {
	if kernel, ok := r.Kernels[name]; ok {
		return kernel, nil
	}
	var (
		kernel *gocca.OCCAKernel
		err    error
	)
	if r.Device.Mode() == "OpenMP" {
		// OpenMP does not get -O3 by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = r.Device.BuildKernelFromString(source, name, props)
	} else {
		kernel, err = r.Device.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	r.Kernels[name] = kernel
	r.logger.Debug("kernel built", zap.String("kernel", name))
	return kernel, nil
}

// Free releases the compiled kernels. The device is owned by the caller.
func (r *Runner) Free() {
	for name, kernel := range r.Kernels {
		kernel.Free()
		delete(r.Kernels, name)
	}
}
