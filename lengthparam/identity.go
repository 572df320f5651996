package lengthparam

import "github.com/notargets/RBFKernel/utils"

// Identity always returns 1, for inputs that are already normalised
type Identity struct{}

func (Identity) Compute(samples [][]float64, _ utils.DistanceFunction) error {
	_, err := utils.Dimensions(samples)
	return err
}

func (Identity) At(int) float64 { return 1 }

func (Identity) Scale() float64 { return 1 }

func (Identity) SetScale(float64) error { return nil }

func (Identity) UsesGlobal() bool { return true }
