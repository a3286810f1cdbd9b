//go:build e2e

package e2e_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
)

// These walkthroughs narrate every step into the per-test log file.
var _ = Describe("Login Tests with Logging", func() {
	It("TC-01: Login with valid credentials - With Logging", func(ctx SpecContext) {
		env := newTest(ctx, "TC-01-login-valid")
		log := env.Log

		Expect(env.Step(1, "Navigating to login page")).To(Succeed())
		Expect(env.Login.Goto(ctx)).To(Succeed())

		Expect(env.Step(2, "Entering valid username")).To(Succeed())
		Expect(env.Login.FillUsername(ctx, cfg.Users.ValidUsername)).To(Succeed())
		log.Info("Username entered", map[string]string{"username": cfg.Users.ValidUsername})

		Expect(env.Step(3, "Entering password")).To(Succeed())
		Expect(env.Login.FillPassword(ctx, cfg.Users.ValidPassword)).To(Succeed())
		log.Info("Password entered")

		Expect(env.Step(4, "Clicking login button")).To(Succeed())
		Expect(env.Login.ClickLogin(ctx)).To(Succeed())

		Expect(env.Step(5, "Verifying redirect to inventory page")).To(Succeed())
		expectURL(ctx, env, pages.PathInventory)
		log.Success("User successfully logged in and redirected")
	})

	It("TC-02: Login with invalid username - With Logging", func(ctx SpecContext) {
		env := newTest(ctx, "TC-02-login-invalid")
		log := env.Log

		Expect(env.Step(1, "Navigating to login page")).To(Succeed())
		Expect(env.Login.Goto(ctx)).To(Succeed())

		Expect(env.Step(2, "Entering invalid username")).To(Succeed())
		Expect(env.Login.FillUsername(ctx, "invalid_user")).To(Succeed())
		log.Warn("Using invalid username for negative test")

		Expect(env.Step(3, "Entering password")).To(Succeed())
		Expect(env.Login.FillPassword(ctx, cfg.Users.ValidPassword)).To(Succeed())

		Expect(env.Step(4, "Clicking login button")).To(Succeed())
		Expect(env.Login.ClickLogin(ctx)).To(Succeed())

		Expect(env.Step(5, "Verifying error message appears")).To(Succeed())
		expectVisible(ctx, env.Login.ErrorBanner())
		msg, err := env.Login.ErrorMessage(ctx)
		Expect(err).NotTo(HaveOccurred())
		log.Info("Error message received", map[string]string{"message": msg})

		log.Success("Error validation passed")
	})

	It("TC-Checkout: Complete purchase with logging", func(ctx SpecContext) {
		env := newTest(ctx, "TC-Checkout-Complete")
		log := env.Log

		Expect(env.Step(1, "Logging in")).To(Succeed())
		Expect(env.Login.Goto(ctx)).To(Succeed())
		Expect(env.Login.Login(ctx, cfg.Users.ValidUsername, cfg.Users.ValidPassword)).To(Succeed())
		log.Success("Login completed")

		Expect(env.Step(2, "Adding products to cart")).To(Succeed())
		Expect(env.Inventory.Goto(ctx)).To(Succeed())
		count, err := env.Inventory.ProductCount(ctx)
		Expect(err).NotTo(HaveOccurred())
		added := min(2, count)
		for i := 0; i < added; i++ {
			Expect(env.Inventory.AddProductToCart(ctx, 0)).To(Succeed())
			log.Info(fmt.Sprintf("Product %d added to cart", i+1))
		}
		log.Success(fmt.Sprintf("%d products added to cart", added))

		Expect(env.Step(3, "Navigating to cart")).To(Succeed())
		Expect(env.Inventory.GoToCart(ctx)).To(Succeed())
		log.Info("Cart page loaded")

		Expect(env.Step(4, "Proceeding to checkout")).To(Succeed())
		Expect(env.Cart.Checkout(ctx)).To(Succeed())
		log.Info("Checkout page loaded")

		Expect(env.Step(5, "Filling checkout information")).To(Succeed())
		c := cfg.Checkout
		Expect(env.Checkout.FillInfo(ctx, c.FirstName, c.LastName, c.ZipCode)).To(Succeed())
		log.Info("Checkout form filled", map[string]string{
			"firstName": c.FirstName,
			"lastName":  c.LastName,
			"zipCode":   c.ZipCode,
		})

		Expect(env.Step(6, "Proceeding to checkout overview")).To(Succeed())
		Expect(env.Checkout.Continue(ctx)).To(Succeed())
		expectURL(ctx, env, pages.PathCheckoutStepTwo)
		log.Success("Checkout overview page reached")

		Expect(env.Step(7, "Completing purchase")).To(Succeed())
		Expect(env.Overview.Finish(ctx)).To(Succeed())
		expectURL(ctx, env, pages.PathCheckoutComplete)
		log.Success("Purchase completed successfully")
	})
})
