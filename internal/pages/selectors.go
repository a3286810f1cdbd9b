package pages

const (
	selUsername    = "#user-name"
	selPassword    = "#password"
	selLoginButton = "#login-button"
	selError       = `[data-test="error"]`
	selLoginLogo   = ".login_logo"

	selInventoryList  = ".inventory_list"
	selInventoryItem  = ".inventory_item"
	selItemName       = ".inventory_item_name"
	selItemPrice      = ".inventory_item_price"
	selItemImage      = ".inventory_item img"
	selAddToCart      = `button[id^="add-to-cart"]`
	selRemove         = `button[id^="remove"]`
	selCartBadge      = ".shopping_cart_badge"
	selCartLink       = ".shopping_cart_link"
	selSort           = ".product_sort_container"
	selMenuButton     = "#react-burger-menu-btn"
	selLogoutLink     = "#logout_sidebar_link"
	selCartList       = ".cart_list"
	selCartItem       = ".cart_item"
	selContinueShop   = "#continue-shopping"
	selCheckoutButton = "#checkout"

	selFirstName      = "#first-name"
	selLastName       = "#last-name"
	selPostalCode     = "#postal-code"
	selContinue       = "#continue"
	selCheckoutInfo   = ".checkout_info"
	selSummary        = ".summary_info"
	selSubtotal       = ".summary_subtotal_label"
	selTax            = ".summary_tax_label"
	selTotal          = ".summary_total_label"
	selFinish         = "#finish"
	selCompleteHeader = ".complete-header"

	orderCompletePhrase = "Thank you for your order"
)

const (
	PathLogin            = "/"
	PathInventory        = "/inventory.html"
	PathCart             = "/cart.html"
	PathCheckoutStepOne  = "/checkout-step-one.html"
	PathCheckoutStepTwo  = "/checkout-step-two.html"
	PathCheckoutComplete = "/checkout-complete.html"
)
