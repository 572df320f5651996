package device

import (
	"testing"

	"github.com/notargets/RBFKernel/builder"
	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testRunner(t *testing.T) (*Runner, *observer.ObservedLogs) {
	t.Helper()
	device, err := CreateDevice()
	if err != nil {
		t.Skipf("no OCCA device: %v", err)
	}
	core, logs := observer.New(zap.DebugLevel)
	r := NewRunner(device, zap.New(core))
	t.Cleanup(func() {
		r.Free()
		device.Free()
	})
	return r, logs
}

func TestComputeDenseOnDevice(t *testing.T) {
	r, logs := testRunner(t)
	wendland, err := rbfs.NewWendland(3, 1)
	require.NoError(t, err)
	// More samples than one block of the inner loop
	samples, err := utils.GenerateHaltonNodes(3, 300)
	require.NoError(t, err)

	for _, k := range []rbfs.Kernel{rbfs.NewGaussian(), rbfs.NewInverseMultiquadric(), wendland} {
		lp := lengthparam.NewGlobal()
		require.NoError(t, lp.SetScale(3))
		K, err := ComputeDenseOnDevice(r, k, lp, samples)
		require.NoError(t, err)
		want, err := builder.ComputeDense(utils.EuclideanDistance{}, k, lp, samples)
		require.NoError(t, err)
		n, c := K.Dims()
		require.Equal(t, len(samples), n)
		require.Equal(t, n, c)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				require.InDeltaf(t, want.At(i, j), K.At(i, j), 1.e-12, "%T K[%d,%d]", k, i, j)
			}
		}
	}
	assert.Len(t, r.Kernels, 3)
	assert.Equal(t, 3, logs.FilterMessage("kernel built").Len())

	// Same system again reuses the compiled kernel
	lp := lengthparam.NewGlobal()
	require.NoError(t, lp.SetScale(3))
	_, err = ComputeDenseOnDevice(r, rbfs.NewGaussian(), lp, samples)
	require.NoError(t, err)
	assert.Len(t, r.Kernels, 3)
	assert.Equal(t, 4, logs.FilterMessage("kernel matrix assembled").Len())
}

func TestComputeDenseOnDeviceErrors(t *testing.T) {
	r, _ := testRunner(t)
	samples, err := utils.GenerateHaltonNodes(2, 10)
	require.NoError(t, err)

	_, err = ComputeDenseOnDevice(r, rbfs.NewGaussian(), lengthparam.NewLocal(), samples)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	tps, err := rbfs.NewThinPlateSpline(2, 2)
	require.NoError(t, err)
	_, err = ComputeDenseOnDevice(r, tps, lengthparam.NewGlobal(), samples)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	_, err = ComputeDenseOnDevice(r, rbfs.NewGaussian(), lengthparam.NewGlobal(), nil)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	_, err = ComputeDenseOnDevice(r, rbfs.NewGaussian(), lengthparam.NewGlobal(), [][]float64{{0}, {0}})
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	assert.Empty(t, r.Kernels)
}

func TestKernelName(t *testing.T) {
	a := kernelName("kernel_matrix", "exp(-r*r)")
	assert.Equal(t, a, kernelName("kernel_matrix", "exp(-r*r)"))
	assert.NotEqual(t, a, kernelName("kernel_matrix", "exp(-2*r*r)"))
	assert.Len(t, a, len("kernel_matrix_")+12)
}
