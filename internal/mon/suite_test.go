package mon

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// TestMonSuite runs the package's BDD-style specs, grounded on the
// teacher's test/e2e/incluster suite entrypoint pattern
// (RegisterFailHandler + RunSpecs), trimmed to the one scenario that
// reads naturally as narrative: the cancellation race between a
// sample tick and item deletion (P8).
func TestMonSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mon cancellation suite")
}
