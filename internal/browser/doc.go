// Package browser drives a real browser for the end-to-end suites.
//
// Two drivers implement the same Browser, Page and Locator interfaces:
// playwright-go (the default) and chromedp talking to a local Chrome over
// the DevTools protocol. Locators are CSS selectors that may be chained and
// indexed; they resolve lazily on every action, so a locator created before
// a navigation keeps working after it.
//
// Every blocking call takes a context. A deadline on the context caps the
// driver timeout of the call.
package browser
