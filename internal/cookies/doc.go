// Package cookies reads the Netscape cookie-jar file exported from a logged-in
// browser session. The GPX export endpoint is a website route rather than an
// API route and authenticates with these cookies instead of the OAuth token.
package cookies
