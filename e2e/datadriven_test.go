//go:build e2e

package e2e_test

import (
	"cmp"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
)

type loginCase struct {
	username string
	password string
	// wantError is empty for logins that reach the inventory.
	wantError string
}

var _ = Describe("Data-Driven Login Tests", func() {
	DescribeTable("Login test",
		func(ctx SpecContext, c loginCase) {
			env := newTest(ctx, "login-"+c.username)

			Expect(env.Login.Goto(ctx)).To(Succeed())
			Expect(env.Login.Login(ctx, c.username, c.password)).To(Succeed())

			if c.wantError == "" {
				expectURL(ctx, env, pages.PathInventory)
				return
			}
			expectVisible(ctx, env.Login.ErrorBanner())
			expectText(ctx, env.Login.ErrorBanner(), ContainSubstring(c.wantError))
		},
		Entry("Valid credentials", loginCase{username: "standard_user", password: "secret_sauce"}),
		Entry("Invalid username", loginCase{username: "invalid_user", password: "secret_sauce", wantError: "Username and password do not match"}),
		Entry("Invalid password", loginCase{username: "standard_user", password: "wrong_password", wantError: "Username and password do not match"}),
		Entry("Locked out user", loginCase{username: "locked_out_user", password: "secret_sauce", wantError: "this user has been locked out"}),
	)
})

var _ = Describe("Data-Driven Product Sorting Tests", func() {
	DescribeTable("Product sorting",
		func(ctx SpecContext, option string) {
			env := loggedIn(ctx, "sort-"+option)

			Expect(env.Inventory.SortBy(ctx, option)).To(Succeed())

			count, err := env.Inventory.ProductCount(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeNumerically(">", 0))
			Expect(env.Inventory.SelectedSort(ctx)).To(Equal(option))

			switch option {
			case pages.SortNameAsc, pages.SortNameDesc:
				names, err := env.Inventory.ProductNames(ctx)
				Expect(err).NotTo(HaveOccurred())
				want := slices.SortedFunc(slices.Values(names), func(a, b string) int {
					return strings.Compare(strings.ToLower(a), strings.ToLower(b))
				})
				if option == pages.SortNameDesc {
					slices.Reverse(want)
				}
				Expect(names).To(Equal(want))
			default:
				prices, err := env.Inventory.ProductPrices(ctx)
				Expect(err).NotTo(HaveOccurred())
				want := slices.SortedFunc(slices.Values(prices), cmp.Compare[float64])
				if option == pages.SortPriceHighLow {
					slices.Reverse(want)
				}
				Expect(prices).To(Equal(want))
			}
		},
		Entry("Sort by name (A-Z)", pages.SortNameAsc),
		Entry("Sort by name (Z-A)", pages.SortNameDesc),
		Entry("Sort by price (Low to High)", pages.SortPriceLowHigh),
		Entry("Sort by price (High to Low)", pages.SortPriceHighLow),
	)
})
