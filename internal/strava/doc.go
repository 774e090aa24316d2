// Package strava talks to the Strava API and web endpoints needed to export
// activity tracks.
//
// Two credential channels are involved. API calls (athlete profile, activity
// listing) use the OAuth bearer token; GPX downloads go through the website's
// session-gated export endpoint and therefore carry the browser cookies
// instead. The activity listing is exposed as a lazy iter.Seq2 so callers can
// treat the paged feed as one sequence and stop early without fetching pages
// they never consume.
package strava
