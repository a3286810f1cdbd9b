// Package fixture assembles what every end-to-end test starts from: a
// structured logger named after the test, the retry helpers bound to the
// configured policy, and the page objects. It also frames the test in the
// log (start banner, numbered steps, end banner with the outcome) and takes
// a screenshot when a test fails.
package fixture
