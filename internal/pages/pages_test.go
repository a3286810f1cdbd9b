package pages_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/browser/browsertest"
	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

const baseURL = "https://www.saucedemo.com"

var _ = Describe("Pages", func() {
	var (
		page *browsertest.Page
		u    *uiutil.Utils
		ctx  context.Context
	)

	BeforeEach(func() {
		page = browsertest.NewPage()
		ctx = context.Background()

		var err error
		u, err = uiutil.New(page, uiutil.WithPolicy(uiutil.RetryPolicy{
			MaxAttempts:    3,
			VisibleTimeout: time.Millisecond,
			Backoff:        time.Millisecond,
		}))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("JoinURL", func() {
		It("should join with a single slash", func() {
			Expect(pages.JoinURL(baseURL+"/", "/cart.html")).To(Equal(baseURL + "/cart.html"))
			Expect(pages.JoinURL(baseURL, "cart.html")).To(Equal(baseURL + "/cart.html"))
			Expect(pages.JoinURL(baseURL, "/")).To(Equal(baseURL + "/"))
		})
	})

	Describe("LoginPage", func() {
		var login *pages.LoginPage

		BeforeEach(func() {
			login = pages.NewLoginPage(u, baseURL)
		})

		It("should open the root page", func() {
			Expect(login.Goto(ctx)).To(Succeed())
			Expect(page.Visits).To(Equal([]string{baseURL + "/"}))
		})

		It("should fill both fields and submit", func() {
			user := page.Add("#user-name")
			pass := page.Add("#password")
			button := page.Add("#login-button")

			Expect(login.Login(ctx, "standard_user", "secret_sauce")).To(Succeed())
			Expect(user.Value).To(Equal("standard_user"))
			Expect(pass.Value).To(Equal("secret_sauce"))
			Expect(button.Clicks).To(Equal(1))
		})

		It("should stop at the first failing step", func() {
			page.Add("#user-name")
			button := page.Add("#login-button")

			Expect(login.Login(ctx, "standard_user", "secret_sauce")).To(MatchError(browser.ErrNotVisible))
			Expect(button.Clicks).To(BeZero())
		})

		It("should read the error banner", func() {
			page.Add(`[data-test="error"]`).Text = "Epic sadface: Sorry, this user has been locked out."

			msg, err := login.ErrorMessage(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(ContainSubstring("locked out"))
		})

		It("should fail to read a missing banner", func() {
			_, err := login.ErrorMessage(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("InventoryPage", func() {
		var inventory *pages.InventoryPage

		BeforeEach(func() {
			inventory = pages.NewInventoryPage(u, baseURL)
		})

		It("should count products", func() {
			page.Add(".inventory_item").Texts = make([]string, 6)
			Expect(inventory.ProductCount(ctx)).To(Equal(6))
		})

		It("should add through the first remaining add button", func() {
			add := page.Add(`button[id^="add-to-cart"]`)

			Expect(inventory.AddProductToCart(ctx, 0)).To(Succeed())
			Expect(inventory.AddProductToCart(ctx, 0)).To(Succeed())
			Expect(add.Clicks).To(Equal(2))
		})

		It("should address a specific remove button", func() {
			second := page.Add(`button[id^="remove"] >> nth=1`)
			Expect(inventory.RemoveProductFromCart(ctx, 1)).To(Succeed())
			Expect(second.Clicks).To(Equal(1))
		})

		It("should report 0 without a badge", func() {
			Expect(inventory.CartBadgeCount(ctx)).To(Equal(0))
		})

		It("should parse the badge", func() {
			page.Add(".shopping_cart_badge").Text = " 3 "
			Expect(inventory.CartBadgeCount(ctx)).To(Equal(3))
		})

		It("should reject a badge that is not a number", func() {
			page.Add(".shopping_cart_badge").Text = "many"
			_, err := inventory.CartBadgeCount(ctx)
			Expect(err).To(MatchError(ContainSubstring("parse cart badge")))
		})

		DescribeTable("sorting",
			func(option string) {
				sort := page.Add(".product_sort_container")
				Expect(inventory.SortBy(ctx, option)).To(Succeed())
				Expect(sort.Selected).To(Equal([]string{option}))
				Expect(inventory.SelectedSort(ctx)).To(Equal(option))
			},
			Entry("name ascending", pages.SortNameAsc),
			Entry("name descending", pages.SortNameDesc),
			Entry("price low to high", pages.SortPriceLowHigh),
			Entry("price high to low", pages.SortPriceHighLow),
		)

		It("should refuse unknown sort options", func() {
			sort := page.Add(".product_sort_container")
			Expect(inventory.SortBy(ctx, "random")).To(MatchError(pages.ErrUnknownSort))
			Expect(sort.Selected).To(BeEmpty())
		})

		It("should parse prices in page order", func() {
			page.Add(".inventory_item_price").Texts = []string{"$29.99", "$9.99", "$7.99"}
			Expect(inventory.ProductPrices(ctx)).To(Equal([]float64{29.99, 9.99, 7.99}))
		})

		It("should surface an unparsable price", func() {
			page.Add(".inventory_item_price").Texts = []string{"free"}
			_, err := inventory.ProductPrices(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("should list product names", func() {
			page.Add(".inventory_item_name").Texts = []string{"Sauce Labs Backpack", "Sauce Labs Onesie"}
			Expect(inventory.ProductNames(ctx)).To(Equal([]string{"Sauce Labs Backpack", "Sauce Labs Onesie"}))
		})

		It("should log out through the menu, retrying the sliding link", func() {
			menu := page.Add("#react-burger-menu-btn")
			link := page.Add("#logout_sidebar_link")
			link.WaitErrs = []error{browser.ErrNotVisible}

			Expect(inventory.Logout(ctx)).To(Succeed())
			Expect(menu.Clicks).To(Equal(1))
			Expect(link.Waits).To(Equal(2))
			Expect(link.Clicks).To(Equal(1))
		})
	})

	Describe("CartPage", func() {
		var cart *pages.CartPage

		BeforeEach(func() {
			cart = pages.NewCartPage(u, baseURL)
		})

		It("should open the cart", func() {
			Expect(cart.Goto(ctx)).To(Succeed())
			Expect(page.CurrentURL).To(Equal(baseURL + "/cart.html"))
		})

		It("should count items and drive the buttons", func() {
			page.Add(".cart_item").Texts = []string{"a", "b"}
			remove := page.Add(`button[id^="remove"]`)
			cont := page.Add("#continue-shopping")
			checkout := page.Add("#checkout")

			Expect(cart.ItemCount(ctx)).To(Equal(2))
			Expect(cart.RemoveItem(ctx, 0)).To(Succeed())
			Expect(cart.ContinueShopping(ctx)).To(Succeed())
			Expect(cart.Checkout(ctx)).To(Succeed())

			Expect(remove.Clicks).To(Equal(1))
			Expect(cont.Clicks).To(Equal(1))
			Expect(checkout.Clicks).To(Equal(1))
		})

		It("should parse the line prices", func() {
			page.Add(".cart_item .inventory_item_price").Texts = []string{"$29.99", "$9.99"}
			Expect(cart.ItemPrices(ctx)).To(Equal([]float64{29.99, 9.99}))
		})

		It("should scope name and price to one line", func() {
			page.Add(".cart_item .inventory_item_name").Text = "Sauce Labs Backpack"

			Expect(cart.ItemName(1).TextContent(ctx)).To(Equal("Sauce Labs Backpack"))
			_, err := cart.ItemPrice(0).TextContent(ctx)
			Expect(err).To(MatchError(browser.ErrNotVisible))
		})
	})

	Describe("CheckoutPage", func() {
		It("should fill the customer information", func() {
			first := page.Add("#first-name")
			last := page.Add("#last-name")
			zip := page.Add("#postal-code")
			cont := page.Add("#continue")

			checkout := pages.NewCheckoutPage(u, baseURL)
			Expect(checkout.FillInfo(ctx, "John", "Doe", "12345")).To(Succeed())
			Expect(checkout.Continue(ctx)).To(Succeed())

			Expect([]string{first.Value, last.Value, zip.Value}).To(Equal([]string{"John", "Doe", "12345"}))
			Expect(cont.Clicks).To(Equal(1))
		})

		It("should read validation errors", func() {
			page.Add(`[data-test="error"]`).Text = "Error: First Name is required"
			msg, err := pages.NewCheckoutPage(u, baseURL).ErrorMessage(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("Error: First Name is required"))
		})
	})

	Describe("CheckoutOverviewPage", func() {
		It("should extract the amounts", func() {
			page.Add(".summary_subtotal_label").Text = "Item total: $29.99"
			page.Add(".summary_tax_label").Text = "Tax: $2.40"
			page.Add(".summary_total_label").Text = "Total: $32.39"

			overview := pages.NewCheckoutOverviewPage(u, baseURL)
			Expect(overview.Subtotal(ctx)).To(Equal(29.99))
			Expect(overview.Tax(ctx)).To(Equal(2.40))
			Expect(overview.Total(ctx)).To(Equal(32.39))
		})

		It("should finish the order", func() {
			finish := page.Add("#finish")
			Expect(pages.NewCheckoutOverviewPage(u, baseURL).Finish(ctx)).To(Succeed())
			Expect(finish.Clicks).To(Equal(1))
		})
	})

	Describe("CheckoutCompletePage", func() {
		var complete *pages.CheckoutCompletePage

		BeforeEach(func() {
			complete = pages.NewCheckoutCompletePage(u, baseURL)
		})

		It("should confirm the order", func() {
			page.Add(".complete-header").Text = "Thank you for your order!"

			Expect(complete.SuccessMessage(ctx)).To(Equal("Thank you for your order!"))
			Expect(complete.IsOrderComplete(ctx)).To(BeTrue())
		})

		It("should not confirm without the header", func() {
			Expect(complete.IsOrderComplete(ctx)).To(BeFalse())
		})

		It("should not confirm a hidden header", func() {
			header := page.Add(".complete-header")
			header.Text = "Thank you for your order!"
			header.Visible = false
			Expect(complete.IsOrderComplete(ctx)).To(BeFalse())
		})
	})
})
