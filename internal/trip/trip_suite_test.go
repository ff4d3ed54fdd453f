package trip_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTrip(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trip Suite")
}
