package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	inner := errors.New("must be positive")
	err := NewConfigValidationError("camera", inner)
	test.That(t, err.Error(), test.ShouldEqual, `error validating "camera": must be positive`)
	test.That(t, errors.Is(err, inner), test.ShouldBeTrue)

	err = NewConfigValidationFieldRequiredError("marker", "outer_diameter_mm")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "marker": "outer_diameter_mm" is required`)
}

func TestNewUnexpectedTypeError(t *testing.T) {
	err := NewUnexpectedTypeError(float64(0), "x")
	test.That(t, err.Error(), test.ShouldEqual, "expected float64 but got string")
}
