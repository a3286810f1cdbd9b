// Package siteprobe checks that the shop answers over plain HTTP before the
// browser is involved. The e2e suite uses it to skip cleanly when the site is
// down. The HTTP checks call Probe directly for status and content.
package siteprobe
