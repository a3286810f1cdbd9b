// Package uiutil holds the helpers the page objects and suites share on top of
// a browser.Page.
//
// The central piece is the retry helper: ClickWithRetry and FillWithRetry
// wait for the element to become visible, act on it, and on failure wait a
// constant backoff before the next attempt. After the last attempt the error
// of that attempt is returned unchanged, so callers can match it with
// errors.Is against browser.ErrNotVisible or a driver error.
//
//	u, err := uiutil.New(page, uiutil.WithPolicy(uiutil.DefaultRetryPolicy()))
//	if err != nil {
//		return err
//	}
//	if err := u.ClickWithRetry(ctx, "#login-button", 0); err != nil {
//		return err
//	}
//
// The remaining helpers are single-shot pass-throughs and two pure functions,
// ExtractNumber and AreSlicesEqual.
package uiutil
