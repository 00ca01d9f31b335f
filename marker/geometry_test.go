package marker

import (
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultGeometry(t *testing.T) {
	g := DefaultGeometry()
	test.That(t, g.Radius(), test.ShouldEqual, 94.0)
	test.That(t, g.InnerRadius(), test.ShouldEqual, 70.5)
	test.That(t, g.SizeRatio(), test.ShouldAlmostEqual, 188.0/141.0)
	test.That(t, g.Validate("marker"), test.ShouldBeNil)
}

func TestValidate(t *testing.T) {
	err := Geometry{}.Validate("marker")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"outer_diameter_mm" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"inner_diameter_mm" is required`)

	err = Geometry{OuterDiameter: -1, InnerDiameter: 10}.Validate("marker")
	test.That(t, err.Error(), test.ShouldContainSubstring, "outer_diameter_mm must be positive")

	err = Geometry{OuterDiameter: 100, InnerDiameter: 120}.Validate("marker")
	test.That(t, err.Error(), test.ShouldContainSubstring, "must be smaller than")

	err = Geometry{OuterDiameter: 300, InnerDiameter: 120}.Validate("marker")
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not fit")
}
