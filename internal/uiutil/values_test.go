package uiutil_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

var _ = Describe("ExtractNumber", func() {
	DescribeTable("parsing the first number",
		func(text string, want float64) {
			Expect(uiutil.ExtractNumber(text)).To(Equal(want))
		},
		Entry("price", "$12.34", 12.34),
		Entry("label", "Item total: $29.99", 29.99),
		Entry("trailing dot", "Total: $32.39.", 32.39),
		Entry("integer", "3 items", 3.0),
		Entry("first of several", "Tax: 2.40 of 30.00", 2.40),
		Entry("no digits", "no digits", 0.0),
		Entry("empty", "", 0.0),
		Entry("lone dot", "version .", 0.0),
	)
})

var _ = Describe("AreSlicesEqual", func() {
	It("should compare element by element in order", func() {
		Expect(uiutil.AreSlicesEqual([]string{"a", "b"}, []string{"a", "b"})).To(BeTrue())
		Expect(uiutil.AreSlicesEqual([]string{"a", "b"}, []string{"b", "a"})).To(BeFalse())
		Expect(uiutil.AreSlicesEqual([]float64{7.99, 9.99}, []float64{7.99})).To(BeFalse())
	})

	It("should treat nil and empty as equal", func() {
		Expect(uiutil.AreSlicesEqual([]int(nil), []int{})).To(BeTrue())
	})
})
