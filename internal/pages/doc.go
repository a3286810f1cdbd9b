// Package pages models the shop's screens as page objects. Each page wraps
// the shared uiutil.Utils of a test and exposes the actions and reads the
// suites need, addressed with plain CSS selectors so either browser driver
// can resolve them.
package pages
